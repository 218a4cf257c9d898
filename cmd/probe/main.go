package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"admin-service/pkg/config"
	"admin-service/pkg/probe"
)

func main() {
	var baseURL string
	var token string

	root := &cobra.Command{
		Use:   "probe",
		Short: "Verify a deployed admin service",
		Long: `probe issues HTTP requests against a deployed admin service and
prints PASS/FAIL lines for each check. The exit code is non-zero when
any probe fails.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "service base URL (defaults to PROBE_BASE_URL)")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token for authenticated probes")

	newRunner := func() (*probe.Runner, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		url := baseURL
		if url == "" {
			url = cfg.Probe.BaseURL
		}
		r := probe.NewRunner(url, cfg.Probe.Timeout)
		r.Token = token
		return r, nil
	}

	run := func(cmd *cobra.Command, probes []probe.Probe) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		fmt.Printf("probing %s\n\n", r.BaseURL)
		results := r.Run(cmd.Context(), probes)
		if !probe.Report(os.Stdout, results) {
			os.Exit(1)
		}
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Probe the unauthenticated service surface",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, probe.HealthProbes())
			},
		},
		&cobra.Command{
			Use:   "auth",
			Short: "Probe the authentication boundary",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, probe.AuthProbes())
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Run the full post-deploy verification suite",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, probe.AllProbes())
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"admin-service/pkg/config"
	"admin-service/pkg/repair"
)

func main() {
	root := &cobra.Command{
		Use:   "dbrepair",
		Short: "Patch known schema drift in the admin database",
		Long: `dbrepair inspects the admin database for known schema drift
(tables and columns dropped or never created by out-of-band migrations)
and applies idempotent DDL patches to repair it.`,
		SilenceUsage: true,
	}

	root.AddCommand(statusCmd(), applyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*pgx.Conn, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, cfg.DB.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%s/%s: %w", cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName, err)
	}
	return conn, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which known drift targets are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			findings, err := repair.Inspect(ctx, conn)
			if err != nil {
				return err
			}

			missing := 0
			for _, f := range findings {
				state := "ok     "
				if f.Missing {
					state = "MISSING"
					missing++
				}
				target := f.Patch.Table
				if f.Patch.Column != "" {
					target = f.Patch.Table + "." + f.Patch.Column
				}
				fmt.Printf("%s  %-35s %s\n", state, target, f.Patch.Description)
			}

			if missing > 0 {
				fmt.Printf("\n%d of %d targets missing, run 'dbrepair apply' to patch\n", missing, len(findings))
				os.Exit(1)
			}
			fmt.Printf("\nall %d targets present, no drift detected\n", len(findings))
			return nil
		},
	}
}

func applyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply DDL patches for every missing drift target",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if dryRun {
				findings, err := repair.Inspect(ctx, conn)
				if err != nil {
					return err
				}
				for _, f := range findings {
					if !f.Missing {
						continue
					}
					fmt.Printf("-- %s\n%s;\n\n", f.Patch.Name, f.Patch.DDL)
				}
				return nil
			}

			applied, err := repair.Apply(ctx, conn)
			for _, p := range applied {
				fmt.Printf("applied %s\n", p.Name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("nothing to apply, no drift detected")
			} else {
				fmt.Printf("%d patches applied\n", len(applied))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the DDL without executing it")
	return cmd
}

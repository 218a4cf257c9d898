package handler

import (
	"admin-service/internal/middleware"
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListExperiments returns causal experiments, optionally filtered by organisation or status
func ListExperiments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_list")

	query := database.GetDB().Model(&model.CausalExperiment{})
	if orgID := c.QueryParam("organisation_id"); orgID != "" {
		query = query.Where("organisation_id = ?", orgID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var experiments []model.CausalExperiment
	if result := query.Order("id").Find(&experiments); result.Error != nil {
		log.Error("Failed to list experiments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list experiments"})
	}

	return c.JSON(http.StatusOK, echo.Map{"experiments": experiments, "count": len(experiments)})
}

// GetExperiment retrieves a single experiment by ID
func GetExperiment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid experiment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experiment ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var experiment model.CausalExperiment
	if result := database.GetDB().First(&experiment, id); result.Error != nil {
		log.Error("Experiment not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "experiment not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"experiment": experiment})
}

// CreateExperiment creates a new draft experiment with free-form JSON config
func CreateExperiment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_create")

	actorID, _ := c.Get(middleware.ContextUserID).(uint)

	var req struct {
		Name           string          `json:"name"`
		OrganisationID uint            `json:"organisation_id"`
		Config         json.RawMessage `json:"config,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse experiment creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.OrganisationID == 0 {
		log.Error("Invalid experiment data",
			zap.String("name", req.Name),
			zap.Uint("organisation_id", req.OrganisationID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and organisation_id are required"})
	}

	// The organisation must exist
	defer prometheus.TrackDBOperation("query")(time.Now())
	var org model.Organisation
	if result := database.GetDB().First(&org, req.OrganisationID); result.Error != nil {
		log.Error("Organisation not found", zap.Uint("id", req.OrganisationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organisation not found"})
	}

	experiment := model.CausalExperiment{
		Name:           req.Name,
		OrganisationID: req.OrganisationID,
		Status:         model.ExperimentDraft,
		Config:         string(req.Config),
		CreatedBy:      actorID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&experiment); result.Error != nil {
		log.Error("Failed to create experiment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "experiment creation failed"})
	}

	log.Info("Experiment created",
		zap.String("name", experiment.Name),
		zap.Uint("id", experiment.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Experiment created successfully",
		"experiment": experiment,
	})
}

// UpdateExperiment updates an experiment's name, status or config
func UpdateExperiment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid experiment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experiment ID"})
	}

	var req struct {
		Name   *string         `json:"name,omitempty"`
		Status *string         `json:"status,omitempty"`
		Config json.RawMessage `json:"config,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse experiment update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var experiment model.CausalExperiment
	if result := database.GetDB().First(&experiment, id); result.Error != nil {
		log.Error("Experiment not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "experiment not found"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		switch model.ExperimentStatus(*req.Status) {
		case model.ExperimentDraft, model.ExperimentRunning, model.ExperimentCompleted:
			updates["status"] = *req.Status
		default:
			log.Error("Invalid experiment status", zap.String("status", *req.Status))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	if len(req.Config) > 0 {
		updates["config"] = string(req.Config)
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&experiment).Updates(updates); result.Error != nil {
		log.Error("Failed to update experiment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "experiment update failed"})
	}

	log.Info("Experiment updated", zap.Uint("id", experiment.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Experiment updated successfully",
		"experiment": experiment,
	})
}

// UploadExperimentResults attaches free-form JSON results and marks the experiment completed
func UploadExperimentResults(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_results")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid experiment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experiment ID"})
	}

	var req struct {
		Results json.RawMessage `json:"results"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse results upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if len(req.Results) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "results are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var experiment model.CausalExperiment
	if result := database.GetDB().First(&experiment, id); result.Error != nil {
		log.Error("Experiment not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "experiment not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updates := map[string]interface{}{
		"results": string(req.Results),
		"status":  model.ExperimentCompleted,
	}
	if result := database.GetDB().Model(&experiment).Updates(updates); result.Error != nil {
		log.Error("Failed to store experiment results", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "results upload failed"})
	}

	log.Info("Experiment results stored", zap.Uint("id", experiment.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Results stored successfully",
		"experiment": experiment,
	})
}

// DeleteExperiment soft-deletes an experiment
func DeleteExperiment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("experiment_delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid experiment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid experiment ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.CausalExperiment{}, id)
	if result.Error != nil {
		log.Error("Failed to delete experiment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "experiment deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "experiment not found"})
	}

	log.Info("Experiment deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Experiment deleted successfully"})
}

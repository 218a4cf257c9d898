package handler

import (
	"admin-service/internal/middleware"
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListFeatureFlags returns all feature flags
func ListFeatureFlags(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("flag_list")

	query := database.GetDB().Model(&model.FeatureFlag{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var flags []model.FeatureFlag
	if result := query.Order("key").Find(&flags); result.Error != nil {
		log.Error("Failed to list feature flags", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list feature flags"})
	}

	return c.JSON(http.StatusOK, echo.Map{"flags": flags, "count": len(flags)})
}

// GetFeatureFlag retrieves a single flag by key
func GetFeatureFlag(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("flag_get")

	key := c.Param("key")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var flag model.FeatureFlag
	if result := database.GetDB().Where("key = ?", key).First(&flag); result.Error != nil {
		log.Error("Feature flag not found", zap.String("key", key))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "feature flag not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"flag": flag})
}

// CreateFeatureFlag creates a new feature flag in the disabled state
func CreateFeatureFlag(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("flag_create")

	var req struct {
		Key         string `json:"key"`
		Description string `json:"description"`
		RolloutNote string `json:"rollout_note,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse flag creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Key == "" {
		log.Error("Invalid flag data: missing key")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key is required"})
	}

	flag := model.FeatureFlag{
		Key:         req.Key,
		Description: req.Description,
		RolloutNote: req.RolloutNote,
		Status:      model.FlagDisabled,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&flag); result.Error != nil {
		log.Error("Failed to create feature flag", zap.Error(result.Error))
		return c.JSON(http.StatusConflict, echo.Map{"error": "flag creation failed"})
	}

	log.Info("Feature flag created", zap.String("key", flag.Key))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Feature flag created successfully",
		"flag":    flag,
	})
}

// UpdateFeatureFlag updates a flag's description or rollout note
func UpdateFeatureFlag(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("flag_update")

	key := c.Param("key")

	var req struct {
		Description *string `json:"description,omitempty"`
		RolloutNote *string `json:"rollout_note,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse flag update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var flag model.FeatureFlag
	if result := database.GetDB().Where("key = ?", key).First(&flag); result.Error != nil {
		log.Error("Feature flag not found", zap.String("key", key))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "feature flag not found"})
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.RolloutNote != nil {
		updates["rollout_note"] = *req.RolloutNote
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&flag).Updates(updates); result.Error != nil {
		log.Error("Failed to update feature flag", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "flag update failed"})
	}

	log.Info("Feature flag updated", zap.String("key", flag.Key))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Feature flag updated successfully",
		"flag":    flag,
	})
}

// SetFeatureFlagStatus transitions a flag between enabled, disabled and archived.
// Archived is terminal; archiving requires super_admin.
func SetFeatureFlagStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("flag_status")

	key := c.Param("key")

	var req struct {
		Status string `json:"status"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse flag status request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	newStatus := model.FlagStatus(req.Status)
	if !model.ValidFlagStatus(newStatus) {
		log.Error("Invalid flag status", zap.String("status", req.Status))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var flag model.FeatureFlag
	if result := database.GetDB().Where("key = ?", key).First(&flag); result.Error != nil {
		log.Error("Feature flag not found", zap.String("key", key))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "feature flag not found"})
	}

	if flag.Status == model.FlagArchived {
		log.Error("Attempted transition of archived flag", zap.String("key", key))
		return c.JSON(http.StatusConflict, echo.Map{"error": "archived flags cannot be changed"})
	}

	if newStatus == model.FlagArchived {
		actorRole, _ := c.Get(middleware.ContextUserRole).(model.Role)
		if actorRole != model.RoleSuperAdmin {
			log.Warn("Flag archive denied", zap.String("actor_role", string(actorRole)))
			prometheus.RecordAuthError("access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only a super_admin can archive flags"})
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&flag).Update("status", newStatus); result.Error != nil {
		log.Error("Failed to update flag status", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "flag status update failed"})
	}

	log.Info("Feature flag status changed",
		zap.String("key", flag.Key),
		zap.String("status", string(newStatus)))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Feature flag status updated successfully",
		"flag":    flag,
	})
}

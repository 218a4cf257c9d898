package handler

import (
	"admin-service/internal/middleware"
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListUserAccess returns the application access grants for a user
func ListUserAccess(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("access_list")

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var grants []model.UserApplicationAccess
	if result := database.GetDB().Where("user_id = ?", userID).Order("application").Find(&grants); result.Error != nil {
		log.Error("Failed to list access grants", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list access grants"})
	}

	return c.JSON(http.StatusOK, echo.Map{"access": grants, "count": len(grants)})
}

// GrantAccess grants or updates a user's access to an application
func GrantAccess(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("access_grant")

	var req struct {
		UserID      uint   `json:"user_id"`
		Application string `json:"application"`
		Granted     *bool  `json:"granted,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse access grant request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.UserID == 0 || req.Application == "" {
		log.Error("Invalid access grant data",
			zap.Uint("user_id", req.UserID),
			zap.String("application", req.Application))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and application are required"})
	}

	app := model.Application(req.Application)
	if !model.ValidApplication(app) {
		log.Error("Unknown application", zap.String("application", req.Application))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown application"})
	}

	granted := true
	if req.Granted != nil {
		granted = *req.Granted
	}

	// Verify the user exists
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, req.UserID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", req.UserID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	actorID, _ := c.Get(middleware.ContextUserID).(uint)

	// Update the existing grant row if one exists
	var existing model.UserApplicationAccess
	checkResult := database.GetDB().
		Where("user_id = ? AND application = ?", req.UserID, app).
		First(&existing)

	if checkResult.Error == nil {
		defer prometheus.TrackDBOperation("update")(time.Now())
		updates := map[string]interface{}{
			"granted":    granted,
			"granted_by": actorID,
		}
		if result := database.GetDB().Model(&existing).Updates(updates); result.Error != nil {
			log.Error("Failed to update access grant", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update access grant"})
		}

		log.Info("Access grant updated",
			zap.Uint("user_id", req.UserID),
			zap.String("application", string(app)),
			zap.Bool("granted", granted))

		return c.JSON(http.StatusOK, echo.Map{
			"message": "Access updated successfully",
			"access":  existing,
		})
	}

	grant := model.UserApplicationAccess{
		UserID:      req.UserID,
		Application: app,
		Granted:     granted,
		GrantedBy:   &actorID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&grant); result.Error != nil {
		log.Error("Failed to create access grant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create access grant"})
	}

	log.Info("Access granted",
		zap.Uint("user_id", req.UserID),
		zap.String("application", string(app)),
		zap.Bool("granted", granted))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Access granted successfully",
		"access":  grant,
	})
}

// RevokeAccess removes a user's access to an application
func RevokeAccess(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("access_revoke")

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	app := model.Application(c.Param("application"))
	if !model.ValidApplication(app) {
		log.Error("Unknown application", zap.String("application", string(app)))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown application"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := database.GetDB().
		Model(&model.UserApplicationAccess{}).
		Where("user_id = ? AND application = ?", userID, app).
		Update("granted", false)
	if result.Error != nil {
		log.Error("Failed to revoke access", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to revoke access"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "access grant not found"})
	}

	log.Info("Access revoked",
		zap.Uint64("user_id", userID),
		zap.String("application", string(app)))

	return c.JSON(http.StatusOK, echo.Map{"message": "Access revoked successfully"})
}

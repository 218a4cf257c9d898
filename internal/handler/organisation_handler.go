package handler

import (
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListOrganisations returns all organisations
func ListOrganisations(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("org_list")

	query := database.GetDB().Model(&model.Organisation{})
	if active := c.QueryParam("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var orgs []model.Organisation
	if result := query.Order("id").Find(&orgs); result.Error != nil {
		log.Error("Failed to list organisations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list organisations"})
	}

	return c.JSON(http.StatusOK, echo.Map{"organisations": orgs, "count": len(orgs)})
}

// GetOrganisation retrieves a single organisation by ID
func GetOrganisation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("org_get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid organisation ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organisation ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var org model.Organisation
	if result := database.GetDB().First(&org, id); result.Error != nil {
		log.Error("Organisation not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organisation not found"})
	}

	// Include member count
	var memberCount int64
	database.GetDB().Model(&model.User{}).Where("organisation_id = ?", org.ID).Count(&memberCount)

	return c.JSON(http.StatusOK, echo.Map{
		"organisation": org,
		"member_count": memberCount,
	})
}

// CreateOrganisation creates a new organisation
func CreateOrganisation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("org_create")

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug,omitempty"`
		Description string `json:"description"`
		Settings    string `json:"settings,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organisation creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid organisation data: missing name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	org := model.Organisation{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Settings:    req.Settings,
		Active:      true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&org); result.Error != nil {
		log.Error("Failed to create organisation", zap.Error(result.Error))
		return c.JSON(http.StatusConflict, echo.Map{"error": "organisation creation failed"})
	}

	log.Info("Organisation created",
		zap.String("name", org.Name),
		zap.Uint("id", org.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "Organisation created successfully",
		"organisation": org,
	})
}

// UpdateOrganisation updates an existing organisation
func UpdateOrganisation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("org_update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid organisation ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organisation ID"})
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Settings    *string `json:"settings,omitempty"`
		Active      *bool   `json:"active,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organisation update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var org model.Organisation
	if result := database.GetDB().First(&org, id); result.Error != nil {
		log.Error("Organisation not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organisation not found"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Settings != nil {
		updates["settings"] = *req.Settings
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&org).Updates(updates); result.Error != nil {
		log.Error("Failed to update organisation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organisation update failed"})
	}

	log.Info("Organisation updated", zap.Uint("id", org.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Organisation updated successfully",
		"organisation": org,
	})
}

// DeleteOrganisation soft-deletes an organisation. Organisations with members
// must be emptied first.
func DeleteOrganisation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("org_delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid organisation ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organisation ID"})
	}

	// Refuse to delete an organisation that still has members
	var memberCount int64
	database.GetDB().Model(&model.User{}).Where("organisation_id = ?", id).Count(&memberCount)
	if memberCount > 0 {
		log.Warn("Attempted to delete organisation with members",
			zap.Uint64("id", id),
			zap.Int64("members", memberCount))
		return c.JSON(http.StatusConflict, echo.Map{"error": "organisation still has members"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.Organisation{}, id)
	if result.Error != nil {
		log.Error("Failed to delete organisation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organisation deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organisation not found"})
	}

	log.Info("Organisation deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Organisation deleted successfully"})
}

// slugify lowercases a name and replaces whitespace with hyphens
func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

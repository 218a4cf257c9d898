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
	"golang.org/x/crypto/bcrypt"
)

// ListUsers returns users, optionally filtered by organisation, role or department
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_list")

	query := database.GetDB().Model(&model.User{})

	if orgID := c.QueryParam("organisation_id"); orgID != "" {
		query = query.Where("organisation_id = ?", orgID)
	}
	if role := c.QueryParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if dept := c.QueryParam("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if result := query.Order("id").Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// GetUser retrieves a single user by ID
func GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().Preload("Organisation").First(&user, id); result.Error != nil {
		log.Error("User not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// CreateUser creates a new user record
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_create")

	// Parse request
	var req struct {
		Email          string  `json:"email"`
		Password       string  `json:"password"`
		Auth0Sub       *string `json:"auth0_sub,omitempty"`
		FirstName      string  `json:"first_name"`
		LastName       string  `json:"last_name"`
		Role           string  `json:"role"`
		Department     string  `json:"department"`
		Location       string  `json:"location"`
		Phone          string  `json:"phone"`
		OrganisationID *uint   `json:"organisation_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" {
		log.Error("Invalid user data: missing email")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleViewer
	}
	if !model.ValidRole(role) {
		log.Error("Invalid role", zap.String("role", req.Role))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	// Only a super_admin may create admin or super_admin users
	actorRole, _ := c.Get(middleware.ContextUserRole).(model.Role)
	if role.AtLeast(model.RoleAdmin) && actorRole != model.RoleSuperAdmin {
		log.Warn("Role escalation denied",
			zap.String("actor_role", string(actorRole)),
			zap.String("requested_role", string(role)))
		prometheus.RecordAuthError("role_escalation_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only a super_admin can assign admin roles"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	user := model.User{
		Email:          req.Email,
		Auth0Sub:       req.Auth0Sub,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           role,
		Department:     req.Department,
		Location:       req.Location,
		Phone:          req.Phone,
		OrganisationID: req.OrganisationID,
		Active:         true,
	}

	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
		}
		user.Password = string(hashedPassword)
	}

	// Save to database - track DB insert operation
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// UpdateUser updates profile and access fields of an existing user
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var req struct {
		FirstName      *string `json:"first_name,omitempty"`
		LastName       *string `json:"last_name,omitempty"`
		Role           *string `json:"role,omitempty"`
		Department     *string `json:"department,omitempty"`
		Location       *string `json:"location,omitempty"`
		Phone          *string `json:"phone,omitempty"`
		OrganisationID *uint   `json:"organisation_id,omitempty"`
		Active         *bool   `json:"active,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		log.Error("User not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.OrganisationID != nil {
		updates["organisation_id"] = *req.OrganisationID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if req.Role != nil {
		newRole := model.Role(*req.Role)
		if !model.ValidRole(newRole) {
			log.Error("Invalid role", zap.String("role", *req.Role))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}

		// Only a super_admin may grant admin or super_admin
		actorRole, _ := c.Get(middleware.ContextUserRole).(model.Role)
		if newRole.AtLeast(model.RoleAdmin) && actorRole != model.RoleSuperAdmin {
			log.Warn("Role escalation denied",
				zap.String("actor_role", string(actorRole)),
				zap.String("requested_role", string(newRole)))
			prometheus.RecordAuthError("role_escalation_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only a super_admin can assign admin roles"})
		}
		updates["role"] = newRole
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&user).Updates(updates); result.Error != nil {
		log.Error("Failed to update user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
	}

	log.Info("User updated", zap.Uint("id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser soft-deletes a user
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	// Do not let a user delete themselves
	actorID, _ := c.Get(middleware.ContextUserID).(uint)
	if actorID == uint(id) {
		log.Warn("User attempted self-deletion", zap.Uint("id", actorID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.User{}, id)
	if result.Error != nil {
		log.Error("Failed to delete user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("User deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

// GetProfile returns the authenticated user's own record
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("profile_access")

	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().Preload("Organisation").First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile lets the authenticated user edit their own contact fields
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("profile_update")

	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		FirstName *string `json:"first_name,omitempty"`
		LastName  *string `json:"last_name,omitempty"`
		Location  *string `json:"location,omitempty"`
		Phone     *string `json:"phone,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse profile update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&model.User{}).Where("id = ?", userID).Updates(updates); result.Error != nil {
		log.Error("Failed to update profile", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}

	log.Info("Profile updated", zap.Uint("id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully"})
}

// ChangePassword changes the authenticated user's password
func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("password_change")

	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse password change request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		log.Error("Current password mismatch", zap.Uint("id", userID))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&user).Update("password", string(hashedPassword)); result.Error != nil {
		log.Error("Failed to update password", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	log.Info("Password changed", zap.Uint("id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// InvitationExpiryHours is how long an invitation stays acceptable.
// Overridden from config at startup.
var InvitationExpiryHours = 72

// CreateInvitation creates a pending invitation for an email address
func CreateInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("invite_create")

	actorID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Email          string `json:"email"`
		OrganisationID uint   `json:"organisation_id"`
		Role           string `json:"role,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invitation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.OrganisationID == 0 {
		log.Error("Invalid invitation data",
			zap.String("email", req.Email),
			zap.Uint("organisation_id", req.OrganisationID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and organisation_id are required"})
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleViewer
	}
	if !model.ValidRole(role) {
		log.Error("Invalid role", zap.String("role", req.Role))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	// The organisation must exist
	defer prometheus.TrackDBOperation("query")(time.Now())
	var org model.Organisation
	if result := database.GetDB().First(&org, req.OrganisationID); result.Error != nil {
		log.Error("Organisation not found", zap.Uint("id", req.OrganisationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organisation not found"})
	}

	// Refuse if the email is already a registered user
	var existingUser model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		log.Error("Email already registered", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Refuse if a pending invitation already exists for this email
	var existingInvite model.UserInvitation
	if result := database.GetDB().
		Where("email = ? AND status = ?", req.Email, model.InvitationPending).
		First(&existingInvite); result.Error == nil {
		log.Error("Pending invitation already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "a pending invitation already exists for this email"})
	}

	invite := model.UserInvitation{
		Email:          req.Email,
		OrganisationID: req.OrganisationID,
		Role:           role,
		Token:          uuid.NewString(),
		Status:         model.InvitationPending,
		ExpiresAt:      time.Now().Add(time.Duration(InvitationExpiryHours) * time.Hour),
		InvitedBy:      actorID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&invite); result.Error != nil {
		log.Error("Failed to create invitation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invitation creation failed"})
	}

	log.Info("Invitation created",
		zap.String("email", invite.Email),
		zap.Uint("organisation_id", invite.OrganisationID),
		zap.String("role", string(invite.Role)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Invitation created successfully",
		"invitation": invite,
		// Returned so the caller can deliver it; invitations are not mailed by this service
		"token": invite.Token,
	})
}

// ListInvitations returns invitations, optionally filtered by status or organisation
func ListInvitations(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("invite_list")

	query := database.GetDB().Model(&model.UserInvitation{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if orgID := c.QueryParam("organisation_id"); orgID != "" {
		query = query.Where("organisation_id = ?", orgID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invites []model.UserInvitation
	if result := query.Order("id").Find(&invites); result.Error != nil {
		log.Error("Failed to list invitations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list invitations"})
	}

	// Surface expiry as a status transition on read; there is no sweeper
	now := time.Now()
	for i := range invites {
		if invites[i].Status == model.InvitationPending && invites[i].IsExpired(now) {
			invites[i].Status = model.InvitationExpired
			database.GetDB().Model(&invites[i]).Update("status", model.InvitationExpired)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"invitations": invites, "count": len(invites)})
}

// RevokeInvitation marks a pending invitation as revoked
func RevokeInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("invite_revoke")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid invitation ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invite model.UserInvitation
	if result := database.GetDB().First(&invite, id); result.Error != nil {
		log.Error("Invitation not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}

	if invite.Status != model.InvitationPending {
		log.Error("Invitation is not pending",
			zap.Uint64("id", id),
			zap.String("status", string(invite.Status)))
		return c.JSON(http.StatusConflict, echo.Map{"error": "only pending invitations can be revoked"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&invite).Update("status", model.InvitationRevoked); result.Error != nil {
		log.Error("Failed to revoke invitation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invitation revocation failed"})
	}

	log.Info("Invitation revoked", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Invitation revoked successfully"})
}

// AcceptInvitation redeems an invitation token and creates the user account.
// This endpoint is public: the token is the credential.
func AcceptInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("invite_accept")

	var req struct {
		Token     string `json:"token"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invitation acceptance", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invite model.UserInvitation
	if result := database.GetDB().Where("token = ?", req.Token).First(&invite); result.Error != nil {
		log.Error("Invitation token not found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}

	now := time.Now()
	if !invite.Acceptable(now) {
		if invite.Status == model.InvitationPending && invite.IsExpired(now) {
			database.GetDB().Model(&invite).Update("status", model.InvitationExpired)
			log.Error("Invitation expired", zap.Uint("id", invite.ID))
			return c.JSON(http.StatusGone, echo.Map{"error": "invitation has expired"})
		}
		log.Error("Invitation not acceptable",
			zap.Uint("id", invite.ID),
			zap.String("status", string(invite.Status)))
		return c.JSON(http.StatusConflict, echo.Map{"error": "invitation is no longer valid"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "acceptance failed"})
	}

	// Create the user and close out the invitation in one transaction
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	user := model.User{
		Email:          invite.Email,
		Password:       string(hashedPassword),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           invite.Role,
		OrganisationID: &invite.OrganisationID,
		Active:         true,
	}

	if result := tx.Create(&user); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create user from invitation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "acceptance failed"})
	}

	if result := tx.Model(&invite).Update("status", model.InvitationAccepted); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to mark invitation accepted", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "acceptance failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "acceptance failed"})
	}

	log.Info("Invitation accepted",
		zap.String("email", user.Email),
		zap.Uint("organisation_id", invite.OrganisationID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Invitation accepted successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

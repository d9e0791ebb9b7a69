package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/gurukit/gurukit-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ProfileHandler serves the onboarding profile.
type ProfileHandler struct {
	profileService *service.ProfileService
	log            zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log.With().Str("component", "profile_handler").Logger(),
	}
}

// Get godoc
// GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profileService.Get(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

// Update godoc
// PUT /api/v1/profile
// Saves the onboarding answers. Omitted fields keep their value.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.profileService.Update(c.Request.Context(), middleware.OwnerID(c), &req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

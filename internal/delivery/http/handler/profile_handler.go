package handler

import (
	"net/http"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type ProfileStatsResponse struct {
	Stats      *domain.ProfileStats      `json:"stats"`
	Completion *domain.ProfileCompletion `json:"completion"`
}

// GetProfile handles GET /profiles/:identity
// @Summary Get profile
// @Description Get a profile by chat identity
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param identity path int true "Chat identity"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profiles/{identity} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}

	p, err := h.profileUseCase.GetProfile(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetStats handles GET /profiles/:identity/stats
// @Summary Get profile statistics
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param identity path int true "Chat identity"
// @Success 200 {object} ProfileStatsResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{identity}/stats [get]
func (h *ProfileHandler) GetStats(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}

	stats, err := h.profileUseCase.Stats(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	completion, err := h.profileUseCase.Completion(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileStatsResponse{Stats: stats, Completion: completion})
}

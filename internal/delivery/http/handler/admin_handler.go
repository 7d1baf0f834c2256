package handler

import (
	"net/http"

	"github.com/gdugdh24/nearby-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/moderation"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	moderation *moderation.ModerationUseCase
}

func NewAdminHandler(moderation *moderation.ModerationUseCase) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

type ResolveReportRequest struct {
	Status domain.ReportStatus `json:"status" binding:"required"`
	Note   string              `json:"note"`
}

type BroadcastRequest struct {
	Text string `json:"text" binding:"required"`
}

type BroadcastResponse struct {
	Recipients []int64 `json:"recipients"`
}

// ListReports handles GET /admin/reports
// @Summary Pending reports, newest first
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum rows"
// @Success 200 {array} domain.ReportView
// @Router /admin/reports [get]
func (h *AdminHandler) ListReports(c *gin.Context) {
	reports, err := h.moderation.ListPendingReports(c.Request.Context(), queryLimit(c, ledger.DefaultPendingLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ResolveReport handles POST /admin/reports/:id/resolve
// @Summary Close a report
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param id path int true "Report ID"
// @Param request body ResolveReportRequest true "Resolution"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/reports/{id}/resolve [post]
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.moderation.Resolve(c.Request.Context(), id, req.Status, req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "report " + string(req.Status)})
}

// Ban handles POST /admin/profiles/:identity/ban
// @Summary Ban a profile
// @Tags admin
// @Security BearerAuth
// @Param identity path int true "Identity"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/profiles/{identity}/ban [post]
func (h *AdminHandler) Ban(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}
	if err := h.moderation.Ban(c.Request.Context(), identity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "profile banned"})
}

// Unban handles DELETE /admin/profiles/:identity/ban
// @Summary Lift a ban
// @Tags admin
// @Security BearerAuth
// @Param identity path int true "Identity"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/profiles/{identity}/ban [delete]
func (h *AdminHandler) Unban(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}
	if err := h.moderation.Unban(c.Request.Context(), identity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "profile unbanned"})
}

// GrantPremium handles POST /admin/profiles/:identity/premium
// @Summary Grant premium
// @Tags admin
// @Security BearerAuth
// @Param identity path int true "Identity"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/profiles/{identity}/premium [post]
func (h *AdminHandler) GrantPremium(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}
	if err := h.moderation.GrantPremium(c.Request.Context(), identity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "premium granted"})
}

// RevokePremium handles DELETE /admin/profiles/:identity/premium
// @Summary Revoke premium
// @Tags admin
// @Security BearerAuth
// @Param identity path int true "Identity"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/profiles/{identity}/premium [delete]
func (h *AdminHandler) RevokePremium(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}
	if err := h.moderation.RevokePremium(c.Request.Context(), identity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "premium revoked"})
}

// Search handles GET /admin/profiles/search?q=
// @Summary Find profiles by identity, name or username
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} domain.Profile
// @Router /admin/profiles/search [get]
func (h *AdminHandler) Search(c *gin.Context) {
	profiles, err := h.moderation.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Stats handles GET /admin/stats
// @Summary Profile counters
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.ProfileCounts
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.moderation.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Broadcast handles POST /admin/broadcast
// @Summary Record a broadcast and return its recipients
// @Description The caller delivers the text to every returned identity
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BroadcastRequest true "Message"
// @Success 200 {object} BroadcastResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/broadcast [post]
func (h *AdminHandler) Broadcast(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	recipients, err := h.moderation.Broadcast(c.Request.Context(), claims.Identity, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, BroadcastResponse{Recipients: recipients})
}

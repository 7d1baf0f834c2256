package handler

import (
	"net/http"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/usecase/feed"
	"github.com/gdugdh24/nearby-backend/internal/usecase/swipe"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultLikesLimit = 20

type SwipeHandler struct {
	feedUseCase  *feed.FeedUseCase
	swipeUseCase *swipe.SwipeUseCase
}

func NewSwipeHandler(feedUseCase *feed.FeedUseCase, swipeUseCase *swipe.SwipeUseCase) *SwipeHandler {
	return &SwipeHandler{
		feedUseCase:  feedUseCase,
		swipeUseCase: swipeUseCase,
	}
}

type LikeRequest struct {
	FromIdentity int64 `json:"from_identity" binding:"required"`
	ToIdentity   int64 `json:"to_identity" binding:"required"`
}

// GetNextCandidate handles GET /feed/:identity/next
// @Summary Next profile to browse
// @Tags feed
// @Security BearerAuth
// @Produce json
// @Param identity path int true "Viewer identity"
// @Success 200 {object} feed.Candidate
// @Failure 404 {object} ErrorResponse
// @Router /feed/{identity}/next [get]
func (h *SwipeHandler) GetNextCandidate(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}

	candidate, err := h.feedUseCase.NextCandidate(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// SubmitLike handles POST /likes
// @Summary Like a profile
// @Description Records a like and creates a match when it is reciprocated
// @Tags likes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body LikeRequest true "Like"
// @Success 200 {object} domain.LikeResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /likes [post]
func (h *SwipeHandler) SubmitLike(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.swipeUseCase.SubmitLike(c.Request.Context(), req.FromIdentity, req.ToIdentity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLikesReceived handles GET /likes/:identity/received
// @Summary Pending likes
// @Tags likes
// @Security BearerAuth
// @Produce json
// @Param identity path int true "Identity"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} domain.ReceivedLike
// @Router /likes/{identity}/received [get]
func (h *SwipeHandler) GetLikesReceived(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}

	likes, err := h.swipeUseCase.LikesReceived(c.Request.Context(), identity, queryLimit(c, defaultLikesLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	if likes == nil {
		likes = []*domain.ReceivedLike{}
	}

	c.JSON(http.StatusOK, likes)
}

// GetMatches handles GET /matches/:identity
// @Summary Active matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param identity path int true "Identity"
// @Success 200 {array} domain.MatchSummary
// @Router /matches/{identity} [get]
func (h *SwipeHandler) GetMatches(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}

	matches, err := h.swipeUseCase.ActiveMatches(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, matches)
}

// CloseMatch handles DELETE /matches/:identity/:match_id
// @Summary Close a match early
// @Tags matches
// @Security BearerAuth
// @Param identity path int true "Participant identity"
// @Param match_id path string true "Match ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{identity}/{match_id} [delete]
func (h *SwipeHandler) CloseMatch(c *gin.Context) {
	identity, ok := pathInt64(c, "identity")
	if !ok {
		return
	}
	matchID, err := uuid.Parse(c.Param("match_id"))
	if err != nil {
		badRequest(c, "invalid match_id")
		return
	}

	if err := h.swipeUseCase.CloseMatch(c.Request.Context(), identity, matchID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "match closed"})
}

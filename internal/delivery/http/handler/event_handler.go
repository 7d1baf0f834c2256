package handler

import (
	"net/http"

	"github.com/gdugdh24/nearby-backend/internal/usecase/flow"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	controller *flow.Controller
}

func NewEventHandler(controller *flow.Controller) *EventHandler {
	return &EventHandler{controller: controller}
}

type EventResponse struct {
	Effects []flow.Effect `json:"effects"`
}

// HandleEvent handles POST /events
// @Summary Process a chat event
// @Description Feeds one user message into the conversation flow and returns what to render
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body flow.Event true "Inbound event"
// @Success 200 {object} EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) HandleEvent(c *gin.Context) {
	var ev flow.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	effects, err := h.controller.Handle(c.Request.Context(), ev)
	if err != nil {
		// The effects already carry a notice for the user.
		_ = c.Error(err)
	}
	if effects == nil {
		effects = []flow.Effect{}
	}
	c.JSON(http.StatusOK, EventResponse{Effects: effects})
}

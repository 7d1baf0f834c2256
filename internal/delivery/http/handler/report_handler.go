package handler

import (
	"net/http"

	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	ledger *ledger.Ledger
}

func NewReportHandler(ledger *ledger.Ledger) *ReportHandler {
	return &ReportHandler{ledger: ledger}
}

type ReportRequest struct {
	ReporterIdentity int64  `json:"reporter_identity" binding:"required"`
	ReportedIdentity int64  `json:"reported_identity" binding:"required"`
	Reason           string `json:"reason" binding:"required"`
}

// CreateReport handles POST /reports
// @Summary Report a profile
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Report"
// @Success 201 {object} domain.Report
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	report, err := h.ledger.RecordReport(c.Request.Context(), req.ReporterIdentity, req.ReportedIdentity, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

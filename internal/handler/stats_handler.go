package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolalab/gestao-escolar-api/internal/service"
	"github.com/escolalab/gestao-escolar-api/pkg/response"
)

// StatsHandler exposes the dashboard statistics endpoint.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Overview godoc
// @Summary Enrollment overview statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

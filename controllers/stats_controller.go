package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/services"
)

// StatsController serves the admin dashboard
type StatsController struct {
	stats *services.StatsService
}

// NewStatsController creates a stats controller
func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats handles GET /api/v1/stats?days=&categoryDays=
func (sc *StatsController) GetStats(c *gin.Context) {
	window := services.ParseStatsWindow(c.Query("days"), c.Query("categoryDays"))

	snapshot, err := sc.stats.Snapshot(c.Request.Context(), window)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, snapshot)
}

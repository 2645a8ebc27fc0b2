package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// HealthController reports liveness and database connectivity
type HealthController struct {
	db *gorm.DB
}

// NewHealthController creates a health controller
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health handles GET /api/v1/health
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bistro Orders API is running",
	})
}

// DatabaseStatus handles GET /api/v1/database/status - checks connectivity and lists tables
func (hc *HealthController) DatabaseStatus(c *gin.Context) {
	log := zerolog.Ctx(c.Request.Context())

	sqlDB, err := hc.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("failed to get database instance")
		respondFailure(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("database ping failed")
		respondFailure(c, http.StatusServiceUnavailable, "DATABASE_CONNECTION_ERROR", "Database connection failed", nil)
		return
	}

	tables, err := hc.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		log.Error().Err(err).Msg("failed to list tables")
		respondFailure(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables", nil)
		return
	}
	sort.Strings(tables)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/demostack/usersapi/internal/db"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

// Check responds with overall and database status.
func (h *HealthHandler) Check(c *gin.Context) {
	databaseStatus := "healthy"
	if errPing := db.Ping(h.db); errPing != nil {
		log.WithError(errPing).Error("database health check failed")
		databaseStatus = "unhealthy"
	}
	status := "healthy"
	if databaseStatus != "healthy" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database":  databaseStatus,
	})
}

// Root responds with the service banner.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Users API is running",
		"health":  "/health",
	})
}

// Package httpapi assembles the gin engine: defense middleware first, then
// the demo Users API routes.
package httpapi

import (
	"github.com/demostack/usersapi/internal/httpapi/handlers"
	"github.com/demostack/usersapi/internal/httpapi/middleware"
	"github.com/demostack/usersapi/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewEngine builds the gin engine with the full middleware chain and all
// routes registered.
func NewEngine(conn *gorm.DB, standard, strict *ratelimit.Manager, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(corsOrigins))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.RateLimit(standard, strict))

	RegisterRoutes(engine, conn)
	return engine
}

// RegisterRoutes registers the Users API routes and handlers.
func RegisterRoutes(r *gin.Engine, conn *gorm.DB) {
	if r == nil || conn == nil {
		return
	}

	r.GET("/", handlers.Root)

	healthHandler := handlers.NewHealthHandler(conn)
	r.GET("/health", healthHandler.Check)

	userHandler := handlers.NewUserHandler(conn)
	usersGroup := r.Group("/api/users")
	usersGroup.GET("", userHandler.List)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.POST("", userHandler.Create)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", userHandler.Delete)
}

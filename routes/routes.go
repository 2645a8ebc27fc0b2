package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/controllers"
	"github.com/kendall-kelly/bistro-orders-api/middleware"
	"github.com/kendall-kelly/bistro-orders-api/models"
	"github.com/kendall-kelly/bistro-orders-api/services"
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  zerolog.Logger
	Auth    *services.AuthService
	Orders  *services.OrderService
	Catalog *services.CatalogService
	Stats   *services.StatsService
	Metrics *middleware.Metrics

	// UploadDir is served under /uploads when images are stored on local disk
	UploadDir string
}

// New builds the router with every /api/v1 route mounted
func New(deps Deps) (*gin.Engine, error) {
	requireAuth, err := middleware.EnsureValidToken(deps.Config)
	if err != nil {
		return nil, err
	}
	if deps.Metrics == nil {
		deps.Metrics = middleware.NewMetrics()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(deps.Metrics.Middleware())
	// cors.New panics on an empty allowlist, so no origins means no CORS headers
	if len(deps.Config.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.Config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.Timeout(deps.Config.DBTimeout))

	health := controllers.NewHealthController(deps.DB)
	authCtrl := controllers.NewAuthController(deps.Auth)
	userCtrl := controllers.NewUserController(deps.Auth)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	productCtrl := controllers.NewProductController(deps.Catalog)
	statsCtrl := controllers.NewStatsController(deps.Stats)

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.Health)
		v1.GET("/database/status", health.DatabaseStatus)
		v1.GET("/metrics", deps.Metrics.Handler())

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authCtrl.Register)
			auth.POST("/login", authCtrl.Login)
			auth.POST("/refresh", authCtrl.Refresh)
			auth.POST("/logout", authCtrl.Logout)
			auth.GET("/me", requireAuth, userCtrl.GetMyProfile)
			auth.PUT("/me", requireAuth, userCtrl.UpdateMyProfile)
		}

		// Catalog reads are public
		v1.GET("/products", productCtrl.ListProducts)
		v1.GET("/products/:id", productCtrl.GetProduct)
		v1.GET("/menu", productCtrl.GetMenu)
		v1.GET("/categories", productCtrl.ListCategories)
		if deps.UploadDir != "" {
			v1.GET("/uploads/:filename", controllers.NewUploadController(deps.UploadDir).GetUploadedImage)
		}

		protected := v1.Group("", requireAuth)
		{
			protected.POST("/orders", orderCtrl.CreateOrder)
			protected.GET("/orders/:id", orderCtrl.GetOrder)
			protected.POST("/orders/:id/cancel", orderCtrl.CancelOrder)
			protected.GET("/users/:id/orders", orderCtrl.ListUserOrders)
		}

		admin := v1.Group("", requireAuth, adminOnly)
		{
			admin.GET("/orders", orderCtrl.ListOrders)
			admin.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
			admin.GET("/stats", statsCtrl.GetStats)
			admin.POST("/products", productCtrl.CreateProduct)
			admin.PUT("/products/:id", productCtrl.UpdateProduct)
			admin.DELETE("/products/:id", productCtrl.DeleteProduct)
			admin.POST("/products/:id/image", productCtrl.UploadProductImage)
		}
	}

	return router, nil
}

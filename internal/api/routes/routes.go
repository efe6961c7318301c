// server/internal/api/routes/routes.go
package routes

import (
	"path/filepath"

	"fleetlog-api-server/config"
	"fleetlog-api-server/internal/api/handlers"
	"fleetlog-api-server/internal/api/middleware"
	"fleetlog-api-server/internal/auth"
	"fleetlog-api-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires handlers and middleware onto the HTTP surface.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	jwtMgr *auth.Manager,
	logService *service.LogService,
	statsService *service.StatsService,
) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	// Uploaded bills are path-addressed and served statically when the
	// local backend is in use.
	if cfg.Storage.Backend == "local" {
		router.Static(cfg.Upload.BaseURL, filepath.Clean(cfg.Upload.Dir))
	}

	authHandler := &handlers.AuthHandler{DB: db, JWT: jwtMgr}
	driverHandler := &handlers.DriverHandler{DB: db}
	logHandler := &handlers.LogHandler{Service: logService}
	dashboardHandler := &handlers.DashboardHandler{Stats: statsService, Logs: logService}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "OK", "message": "Server is running"})
		})

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/admin/register", authHandler.AdminRegister)
			authRoutes.POST("/admin/login", authHandler.AdminLogin)
			authRoutes.POST("/driver/login", authHandler.DriverLogin)
		}

		drivers := api.Group("/drivers")
		drivers.Use(middleware.Authenticate(jwtMgr))
		{
			// A driver may fetch its own profile; everything else is
			// admin-only.
			drivers.GET("/:id", middleware.Authorize(auth.RoleAdmin, auth.RoleDriver), driverHandler.GetDriverByID)

			adminOnly := drivers.Group("")
			adminOnly.Use(middleware.Authorize(auth.RoleAdmin))
			{
				adminOnly.GET("", driverHandler.GetAllDrivers)
				adminOnly.POST("", driverHandler.CreateDriver)
				adminOnly.PUT("/:id", driverHandler.UpdateDriver)
				adminOnly.DELETE("/:id", driverHandler.DeleteDriver)
			}
		}

		logs := api.Group("/logs")
		logs.Use(middleware.Authenticate(jwtMgr))
		logs.Use(middleware.Authorize(auth.RoleAdmin, auth.RoleDriver))
		{
			logs.GET("", logHandler.GetLogs)
			logs.POST("", logHandler.CreateLog)
			logs.GET("/export/csv", logHandler.ExportCSV)
			logs.GET("/export/xlsx", logHandler.ExportXLSX)
			logs.GET("/export/pdf", logHandler.ExportPDF)
			logs.GET("/:id", logHandler.GetLog)
			logs.PUT("/:id", logHandler.UpdateLog)
			logs.DELETE("/:id", logHandler.DeleteLog)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.Authenticate(jwtMgr))
		{
			dashboard.GET("/admin", middleware.Authorize(auth.RoleAdmin), dashboardHandler.AdminStats)
			dashboard.GET("/driver", middleware.Authorize(auth.RoleDriver), dashboardHandler.DriverStats)
			dashboard.GET("/driver/:driverId/logs", middleware.Authorize(auth.RoleAdmin), dashboardHandler.DriverLogs)
		}
	}

	return router
}

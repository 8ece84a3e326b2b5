package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"car-passion/cmd/api/handlers"
	"car-passion/cmd/api/middleware"
	"car-passion/cmd/api/services"
	"car-passion/cmd/api/session"
	"car-passion/config"
	_ "car-passion/docs"
)

// Deps are the long-lived components the routes are built from.
type Deps struct {
	Config   *config.AppConfig
	Sessions *session.Store
	Catalog  *services.CatalogService
	Admin    *services.AdminService
	Uploads  *services.UploadService
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestTrace(), middleware.Recovery())

	r.GET("/health", handlers.HealthHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.VisitorSession(d.Sessions, d.Config.Session))
	{
		cars := api.Group("/cars")
		cars.GET("", handlers.ListCarsHandler(d.Catalog))
		cars.GET("/featured", handlers.FeaturedCarsHandler(d.Catalog))
		cars.GET("/:id", handlers.GetCarHandler(d.Catalog))
		cars.POST("/search/filters", handlers.ApplyFiltersHandler(d.Catalog))
		cars.POST("/search/sort", handlers.ChangeSortHandler(d.Catalog))
		cars.POST("/search/page", handlers.ChangePageHandler(d.Catalog))
		cars.POST("/search/clear", handlers.ClearFiltersHandler(d.Catalog))

		auth := api.Group("/auth")
		auth.POST("/login", handlers.LoginHandler())
		auth.POST("/logout", handlers.LogoutHandler())
		auth.GET("/session", handlers.SessionHandler())

		admin := api.Group("/admin", middleware.RequireAdmin())
		admin.GET("/dashboard", handlers.DashboardHandler(d.Admin))
		admin.GET("/cars", handlers.AdminListCarsHandler(d.Admin))
		admin.POST("/cars", handlers.CreateCarHandler(d.Admin))
		admin.GET("/cars/:id", handlers.AdminGetCarHandler(d.Admin))
		admin.PUT("/cars/:id", handlers.UpdateCarHandler(d.Admin))
		admin.PATCH("/cars/:id/status", handlers.UpdateCarStatusHandler(d.Admin))
		admin.DELETE("/cars/:id", handlers.DeleteCarHandler(d.Admin))
		admin.GET("/cars/:id/history", handlers.CarHistoryHandler(d.Admin))
		admin.POST("/uploads/images", handlers.UploadImagesHandler(d.Uploads))
		admin.DELETE("/uploads/image", handlers.DeleteImageHandler(d.Uploads))
	}

	return r
}

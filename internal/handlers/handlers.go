package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mk3hierros/internal/cache"
	"mk3hierros/internal/config"
	"mk3hierros/internal/metrics"
	"mk3hierros/internal/middleware"
	"mk3hierros/internal/security"
	"mk3hierros/internal/service"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	categories *service.CategoryService
	works      *service.WorkService
	images     *service.ImageService
	cache      cache.Cache
	db         Pinger
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	categories *service.CategoryService,
	works *service.WorkService,
	images *service.ImageService,
	publicCache cache.Cache,
	db Pinger,
) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		categories: categories,
		works:      works,
		images:     images,
		cache:      publicCache,
		db:         db,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	staff := middleware.StaffAuth(h.cfg.Security.JWTSecret)
	admin := middleware.RequireRoles(h.cfg.Security.JWTSecret != "", security.RoleAdmin)

	categorias := router.Group("/categorias")
	{
		categorias.GET("", h.ListCategories)
		categorias.GET("/:id", h.GetCategory)
		categorias.GET("/byName/:name", h.FindCategoriesByName)
		categorias.POST("", staff, admin, h.CreateCategory)
		categorias.PUT("/:id", staff, admin, h.UpdateCategory)
		categorias.DELETE("/:id", staff, admin, h.DeleteCategory)
	}

	trabajo := router.Group("/trabajo")
	{
		trabajo.GET("", h.ListWorks)
		trabajo.GET("/:id", h.GetWork)
		trabajo.GET("/byCategory/:categoryId", h.ListWorksByCategory)
		trabajo.GET("/byPriority/:priority", h.ListWorksByPriority)
		trabajo.GET("/byStatus/:status", h.ListWorksByStatus)
		trabajo.POST("", staff, h.CreateWork)
		trabajo.PUT("/:id", staff, h.UpdateWork)
		trabajo.DELETE("/:id", staff, h.DeleteWork)

		trabajo.POST("/:id/images", staff, h.UploadImages)
		trabajo.GET("/:id/images", h.ListImages)
		trabajo.GET("/:id/images/:imageId", h.GetImage)
		trabajo.DELETE("/images/:imageId", staff, h.DeleteImage)
	}

	public := router.Group("/public")
	{
		public.GET("/works", h.PublicWorks)
		public.GET("/works/:id", h.PublicWork)
		public.POST("/contact", h.Contact)
	}
}

package router

import (
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/config"
	"github.com/vllevinton/bakery-stock-app/internal/handler"
	"github.com/vllevinton/bakery-stock-app/internal/middleware"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/repository"
	"github.com/vllevinton/bakery-stock-app/internal/service"
	"github.com/vllevinton/bakery-stock-app/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	branchProductRepo := repository.NewBranchProductRepository(db)
	stockEntryRepo := repository.NewStockEntryRepository(db)
	alertLogRepo := repository.NewAlertLogRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	visibilitySvc := service.NewVisibilityService(branchProductRepo, branchRepo)
	catalogSvc := service.NewCatalogService(productRepo, branchProductRepo, branchRepo, visibilitySvc)
	stockSvc := service.NewStockService(productRepo, branchProductRepo, stockEntryRepo, alertLogRepo, visibilitySvc, dispatcher, cfg)
	summarySvc := service.NewSummaryService(branchProductRepo, stockEntryRepo, branchRepo, visibilitySvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	stockH := handler.NewStockHandler(visibilitySvc, stockSvc)
	historyH := handler.NewHistoryHandler(stockSvc)
	summaryH := handler.NewSummaryHandler(summarySvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — owner only
		prods := v1.Group("/products", middleware.RequireRole(model.RoleOwner))
		{
			prods.GET("", productsH.Listar)
			prods.POST("", productsH.Crear)
			prods.PUT("/:id", productsH.Actualizar)
			prods.DELETE("/:id", productsH.Eliminar)
			prods.PUT("/:id/branch/:branchId", productsH.ActualizarBranch)
			prods.DELETE("/:id/branch/:branchId", productsH.DesactivarEnBranch)
		}

		// Stock counts — employees record, the owner may also act on any branch
		stock := v1.Group("/stock", middleware.RequireRole(model.RoleEmpleado, model.RoleOwner))
		{
			stock.GET("/products", stockH.Listar)
			stock.POST("/batch", stockH.GuardarBatch)
		}

		// Reporting — owner only
		v1.GET("/summary", middleware.RequireRole(model.RoleOwner), summaryH.Obtener)
		v1.GET("/history", middleware.RequireRole(model.RoleOwner), historyH.Listar)
	}

	return r
}

package router

import (
	"time"

	"stockpos/internal/config"
	"stockpos/internal/handler"
	"stockpos/internal/middleware"
	"stockpos/internal/repository"
	"stockpos/internal/service"
	"stockpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	storeRepo := repository.NewStoreRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	roomSvc := service.NewRoomService(roomRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo, ledgerRepo, productRepo, roomRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, storeRepo, productRepo, inventorySvc, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	roomsH := handler.NewRoomsHandler(roomSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc)

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
		// Roles: clerk, manager, admin — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("clerk", "manager", "admin"), salesH.Create)
		v1.GET("/sales", middleware.RequireRole("clerk", "manager", "admin"), salesH.List)

		// Catalog reads — every authenticated role (register sync)
		v1.GET("/products", middleware.RequireRole("clerk", "manager", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("clerk", "manager", "admin"), productsH.FindByID)
		// Catalog writes — manager or admin
		prods := v1.Group("/products", middleware.RequireRole("manager", "admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		rooms := v1.Group("/rooms", middleware.RequireRole("manager", "admin"))
		{
			rooms.POST("", roomsH.Create)
			rooms.GET("", roomsH.List)
			rooms.PUT("/:id", roomsH.Update)
			rooms.DELETE("/:id", roomsH.Deactivate)
		}

		inv := v1.Group("/inventory", middleware.RequireRole("manager", "admin"))
		{
			inv.POST("/restock", inventoryH.Restock)
			inv.POST("/transfer", inventoryH.Transfer)
			inv.POST("/adjust", inventoryH.Adjust)
			inv.GET("", inventoryH.ListItems)
			inv.GET("/ledger", inventoryH.ListLedger)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

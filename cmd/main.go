package main

import (
	"errors"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/handler"
	mid "github.com/singhkevin/ProductCodeScanner2-docker2/internal/middleware"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/database"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/idgen"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/jwtutil"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting guardhub",
		zap.String("environment", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize snowflake node for scan ledger IDs
	idgen.Init()

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Seed the bootstrap admin account
	if err := seedAdmin(database.GetDB(), cfg); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}

	// Wire handlers to the database
	handler.Init(database.GetDB(), cfg)

	// Initialize Echo framework
	e := echo.New()
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)
	auth.GET("/verify", handler.VerifyToken, mid.AuthMiddleware)

	// Public verification endpoint used by the scanner app
	e.POST("/api/scans/verify", handler.VerifyScan)

	// API routes - all require authentication
	api := e.Group("/api", mid.AuthMiddleware)

	// Products and code minting
	api.POST("/products", handler.CreateProduct)
	api.POST("/products/generate", handler.GenerateProducts)
	api.GET("/products/company", handler.ListCompanyProducts)

	// Bulk submission pipeline
	api.POST("/products/bulk", handler.UploadBulk)
	api.GET("/products/bulk/requests", handler.ListBulkRequests)
	api.GET("/products/bulk/requests/:id", handler.GetBulkRequest)
	api.POST("/products/bulk/requests/:id/handle", handler.HandleBulkRequest)

	// Fraud map and dashboard stats
	api.GET("/scans/hotspots", handler.Hotspots)
	api.GET("/stats/overview", handler.GetOverview)
	api.GET("/stats/activity", handler.GetActivity)
	api.GET("/stats/companies", handler.ListCompanies)
	api.POST("/stats/companies", handler.CreateCompany)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

// seedAdmin creates the bootstrap admin user when it does not exist yet
func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	var existing model.User
	err := db.Where("email = ?", cfg.Admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:    cfg.Admin.Email,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	return db.Create(&admin).Error
}

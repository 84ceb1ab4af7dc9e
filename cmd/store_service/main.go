package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/ridloal/e-commerce-checkout/internal/platform/auth"
	"github.com/ridloal/e-commerce-checkout/internal/platform/config"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/platform/metrics"
	"github.com/ridloal/e-commerce-checkout/internal/platform/migrations"
	"github.com/ridloal/e-commerce-checkout/internal/platform/validation"
	productApi "github.com/ridloal/e-commerce-checkout/internal/product/api"
	productRepo "github.com/ridloal/e-commerce-checkout/internal/product/repository"
	productService "github.com/ridloal/e-commerce-checkout/internal/product/service"
	purchaseApi "github.com/ridloal/e-commerce-checkout/internal/purchase/api"
	purchaseRepo "github.com/ridloal/e-commerce-checkout/internal/purchase/repository"
	purchaseService "github.com/ridloal/e-commerce-checkout/internal/purchase/service"
	userApi "github.com/ridloal/e-commerce-checkout/internal/user/api"
	userRepo "github.com/ridloal/e-commerce-checkout/internal/user/repository"
	userService "github.com/ridloal/e-commerce-checkout/internal/user/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Error("Store Service stopped with error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	// Load Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Mode: cfg.Log.Mode, Filename: cfg.Log.Filename}); err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting Store Service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup Database
	db, err := database.Connect(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return err
	}
	if err := validation.Register(); err != nil {
		return err
	}

	// Setup Dependencies
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	gate := auth.NewGate(tokens)
	appMetrics := metrics.New()

	invoiceNumbers, err := purchaseService.NewInvoiceNumbers(cfg.Checkout.InvoiceNodeID)
	if err != nil {
		return err
	}

	userRepository := userRepo.NewSQLUserRepository(db)
	productRepository := productRepo.NewSQLProductRepository(db)
	purchaseRepository := purchaseRepo.NewSQLPurchaseRepository(db)

	usrService := userService.NewUserService(userRepository, tokens)
	prdService := productService.NewProductService(productRepository)
	purService := purchaseService.NewPurchaseService(purchaseRepository, productRepository, invoiceNumbers, appMetrics, cfg.Checkout.MaxAttempts)
	stockMonitor := productService.NewStockMonitor(productRepository, appMetrics, cfg.StockMonitor.Threshold, cfg.StockMonitor.Spec)

	// Setup Gin Router
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(), appMetrics.Middleware())
	registerOperationalRoutes(router, db, appMetrics.Handler())

	root := &router.RouterGroup
	userApi.NewUserHandler(usrService).RegisterRoutes(root)
	productApi.NewProductHandler(prdService, gate).RegisterRoutes(root)
	purchaseApi.NewPurchaseHandler(purService, gate).RegisterRoutes(root)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := stockMonitor.Start(); err != nil {
		return err
	}
	defer stockMonitor.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Store Service running on port " + cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down Store Service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func registerOperationalRoutes(router *gin.Engine, db *sqlx.DB, metricsHandler http.Handler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "API running"})
	})
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("Health check: database unreachable", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metricsHandler))
}

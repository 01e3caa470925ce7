package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/config"
	"github.com/easygametopup/storefront/internal/repository/postgres"
	redisrepo "github.com/easygametopup/storefront/internal/repository/redis"
	"github.com/easygametopup/storefront/internal/service/auth"
	"github.com/easygametopup/storefront/internal/service/catalog"
	"github.com/easygametopup/storefront/internal/service/cleanup"
	"github.com/easygametopup/storefront/internal/service/purchase"
	transporthttp "github.com/easygametopup/storefront/internal/transport/http"
	pkgauth "github.com/easygametopup/storefront/pkg/auth"
	"github.com/easygametopup/storefront/pkg/httputil"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			// No .env file is fine; the environment may be set directly.
		}
	}

	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Configuration faults are fatal before any request work begins.
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	codec, err := pkgauth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)
	if err != nil {
		logger.Fatal("failed to construct token codec", zap.Error(err))
	}

	db, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	purchaseRepo := postgres.NewPurchaseRepo(db)

	redisClient := redisrepo.Connect(cfg.RedisURL, cfg.RedisPassword, logger)
	var cache auth.CacheRepository
	var catalogCache catalog.CacheRepository
	if redisClient != nil {
		defer redisClient.Close()
		c := redisrepo.NewCache(redisClient)
		cache = c
		catalogCache = c
	}

	var verifier auth.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	refreshManager := auth.NewRefreshManager(sessionRepo, cfg.RefreshTokenTTL)
	authService := auth.NewService(userRepo, refreshManager, codec, verifier, cache, logger)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)
	purchaseService := purchase.NewService(catalogRepo, purchaseRepo, logger)

	cookies := &httputil.CookieWriter{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	handlers := transporthttp.Handlers{
		Auth:     transporthttp.NewAuthHandler(authService, cookies, logger),
		Catalog:  transporthttp.NewCatalogHandler(catalogService, logger),
		Purchase: transporthttp.NewPurchaseHandler(purchaseService, logger),
	}
	if oauthCfg := cfg.NewGoogleOAuthConfig(); oauthCfg != nil {
		handlers.OAuth = transporthttp.NewOAuthHandler(oauthCfg, authService, cookies, cfg.FrontendURL, logger)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transporthttp.NewRouter(handlers, authService, cfg.AllowedOrigins, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go cleanup.NewWorker(sessionRepo, logger).Start(workerCtx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("server shutting down")

	stopWorker()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

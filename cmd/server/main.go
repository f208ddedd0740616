package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"forjafila/internal/api/handlers"
	"forjafila/internal/api/middleware"
	"forjafila/internal/config"
	"forjafila/internal/core"
	"forjafila/internal/db"
	"forjafila/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// .env is optional, used in development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting forjafila", "port", cfg.Server.Port, "db_path", cfg.Database.Path)

	database, err := db.Open(db.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer database.Close()

	jobs := db.NewJobOperations(database)
	products := db.NewProductOperations(database)
	filaments := db.NewFilamentOperations(database)
	lifecycle := core.NewLifecycle(jobs, products, filaments, log)

	auth := middleware.NewAuthMiddleware(cfg.Auth)
	queueHandler := handlers.NewQueueHandler(lifecycle, log)
	healthHandler := handlers.NewHealthHandler(database)

	if cfg.Logging.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := engine.Group("/api")
	healthHandler.RegisterRoutes(api)
	api.POST("/auth/login", auth.LoginHandler)
	api.POST("/auth/logout", auth.LogoutHandler)

	protected := api.Group("")
	protected.Use(auth.RequireAuth())
	queueHandler.RegisterRoutes(protected)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrCh:
		log.Fatal("server error", "error", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

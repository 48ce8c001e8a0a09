package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/config"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/health"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/meeting"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/meta"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/middleware"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/pubsub"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/tracing"
)

const serviceName = "meeting-coordination"

func main() {
	// Load .env file for local development.
	// Try multiple paths to handle different ways of running the app
	envPaths := []string{".env", "../../../.env", "../../.env"}
	var envLoaded bool

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			slog.Info("Loaded environment from", "path", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		slog.Warn("No .env file found in any expected location, relying on environment variables")
	}

	// Validate environment variables before starting the server
	cfg, err := config.ValidateEnv()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.DevelopmentMode {
		slog.Info("Running in DEVELOPMENT MODE")
	}

	if err := logging.Initialize(cfg.DevelopmentMode); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer logging.Sync()

	// --- Tracing (Optional) ---
	// Only wired up when an OTLP collector endpoint is configured.
	var tracingEnabled bool
	if cfg.OtelEndpoint != "" {
		tp, err := tracing.InitTracer(context.Background(), serviceName, cfg.OtelEndpoint)
		if err != nil {
			slog.Error("Failed to initialize tracing, continuing without it", "error", err)
		} else {
			tracingEnabled = true
			slog.Info("✅ Tracing initialized", "endpoint", cfg.OtelEndpoint)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					slog.Error("Error shutting down tracer provider", "error", err)
				}
			}()
		}
	} else {
		slog.Info("Tracing disabled (no OTLP endpoint configured)")
	}

	// --- Core State ---
	// Everything lives in process memory: one registry, one broker, one hub.
	reg := registry.New(cfg.MaxRooms)
	broker := pubsub.NewBroker()
	hub := meeting.NewHub(reg, broker, cfg.AllowedOrigins, cfg.LandingURL)

	// --- Set up Server ---
	router := gin.Default()
	// Cors
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	router.Use(cors.New(corsConfig))

	// Error handling
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	if tracingEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}

	// Routing
	roomsHandler := meeting.NewRoomsHandler(reg)
	router.POST("/rooms", roomsHandler.CreateRoom)
	router.GET("/rooms/:code", roomsHandler.ProbeRoom)
	router.GET("/chair/:code", roomsHandler.ChairRedirect)
	router.GET("/room/:code", roomsHandler.ParticipantRedirect)

	router.GET("/ws", hub.ServeWs)

	metaHandler := meta.NewHandler()
	metaGroup := router.Group("/metadata")
	{
		metaGroup.GET("/meeting-goals", metaHandler.MeetingGoals)
		metaGroup.GET("/participation-formats", metaHandler.ParticipationFormats)
		metaGroup.GET("/decision-rules", metaHandler.DecisionRules)
		metaGroup.GET("/deliverables", metaHandler.Deliverables)
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoints
	healthHandler := health.NewHandler(reg)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)

	// Start the server.
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		slog.Info("API server starting", "port", cfg.Port, "max_rooms", cfg.MaxRooms)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to run server", "error", err)
			syscall.Kill(os.Getpid(), syscall.SIGTERM)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// The context is used to inform the server it has 30 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Close all active WebSocket connections gracefully
	if err := hub.Shutdown(ctx); err != nil {
		slog.Error("Error during Hub shutdown:", "error", err)
	}

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown:", "error", err)
	}

	slog.Info("Server exiting")
}

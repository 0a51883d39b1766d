package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/resumeforge/resumeforge/internal/ai"
	"github.com/resumeforge/resumeforge/internal/api"
	"github.com/resumeforge/resumeforge/internal/audit"
	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/database"
	"github.com/resumeforge/resumeforge/internal/middleware"
	inats "github.com/resumeforge/resumeforge/internal/nats"
	iredis "github.com/resumeforge/resumeforge/internal/redis"
	"github.com/resumeforge/resumeforge/internal/resumes"
	"github.com/resumeforge/resumeforge/internal/server"
	"github.com/resumeforge/resumeforge/internal/usage"
	"github.com/resumeforge/resumeforge/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), path); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional: events are dropped when not configured)
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc, publisher)
	userHandler := users.NewHandler(userSvc, auth.RequestUserID)

	// Usage tracking
	tracker := usage.NewTracker(redisClient)
	planResolver := usage.PlanResolver(userSvc.PlanFor)
	usageHandler := usage.NewHandler(tracker, planResolver, auth.RequestUserID)

	// Resumes
	resumeRepo := resumes.NewRepository(pool)
	resumeSvc := resumes.NewService(resumeRepo)
	resumeHandler := resumes.NewHandler(resumeSvc, publisher)

	// AI
	aiClient := ai.NewClient(cfg.AI)
	aiSvc := ai.NewService(aiClient, tracker, planResolver, publisher)
	aiHandler := ai.NewHandler(aiSvc, tracker, planResolver)

	// Audit
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)
	if natsClient != nil {
		consumer := audit.NewConsumer(auditRepo, inats.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Router
	authLimiter := middleware.NewRateLimiter(redisClient, 10, 60)
	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Me:         userHandler.Me,
		UpdatePlan: userHandler.UpdatePlan,

		CreateResume:        resumeHandler.Create,
		ListResumes:         resumeHandler.List,
		GetResume:           resumeHandler.Get,
		UpdateResume:        resumeHandler.Update,
		DeleteResume:        resumeHandler.Delete,
		OwnershipMiddleware: resumeHandler.OwnershipMiddleware,

		GenerateAI: aiHandler.Generate,

		GetUsage:         usageHandler.GetCurrent,
		GetUsageStats:    usageHandler.GetStats,
		GetUsageWarnings: usageHandler.GetWarnings,

		ListAuditLogs:       auditHandler.List,
		ListResumeAuditLogs: auditHandler.ListForResume,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

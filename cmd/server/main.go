package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/database"
	"github.com/gurukit/gurukit-backend/internal/gateway"
	"github.com/gurukit/gurukit-backend/internal/handler"
	"github.com/gurukit/gurukit-backend/internal/logger"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/repository"
	"github.com/gurukit/gurukit-backend/internal/router"
	"github.com/gurukit/gurukit-backend/internal/service"
	"github.com/gurukit/gurukit-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("autosave_policy", string(cfg.AutosavePolicy)).
		Msg("Starting GuruKit Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to Gemini ─────────────────────────────────────────────
	// Without a key the server still starts; generation requests fail.
	var generator service.Generator
	gemini, err := gateway.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, log)
	if err != nil {
		log.Warn().Err(err).Msg("Generation disabled")
		generator = gateway.Disabled{}
	} else {
		generator = gemini
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, service.NewRedisSessionStore(rdb), log)
	profileService := service.NewProfileService(profileRepo, log)
	quizCache := service.NewRedisQuizCache(rdb, cfg.QuizCacheTTL, log)
	documentService := service.NewDocumentService(documentRepo, quizCache, log)
	editorService := service.NewEditorService(documentService, cfg.EditorIdleTTL, log)
	generationService := service.NewGenerationService(generator, documentService, profileService, cfg.AutosavePolicy, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	checks := map[string]handler.Check{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, log),
		Profile:  handler.NewProfileHandler(profileService, log),
		Document: handler.NewDocumentHandler(documentService, editorService, log),
		Generate: handler.NewGenerateHandler(generationService, log),
		Editor:   handler.NewEditorHandler(editorService, log),
		Quiz:     handler.NewQuizHandler(documentService, cfg.QuizFeedbackDelay, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(checks, editorService, log),
	}

	limiters := &router.Limiters{
		Login:    middleware.NewRateLimiter(10, time.Minute, middleware.ByClientIP),
		Generate: middleware.NewRateLimiter(cfg.GenerateRatePerMin, time.Minute, middleware.ByUserOrIP),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	go editorService.Run(workerCtx)
	go limiters.Login.Run(workerCtx)
	go limiters.Generate.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// No WriteTimeout: generation calls and quiz sockets outlive it.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background loops. Unsaved editor copies are dropped.
	workerCancel()
	if n := editorService.OpenCount(); n > 0 {
		log.Warn().Int("open_editors", n).Msg("Discarding open editors")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

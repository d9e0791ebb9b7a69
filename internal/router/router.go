package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/handler"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Document *handler.DocumentHandler
	Generate *handler.GenerateHandler
	Editor   *handler.EditorHandler
	Quiz     *handler.QuizHandler
	System   *handler.SystemHandler
}

// Limiters holds the rate limiters applied to sensitive routes. A nil
// limiter disables limiting for its routes.
type Limiters struct {
	Login    *middleware.RateLimiter
	Generate *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	if limiters == nil {
		limiters = &Limiters{}
	}

	// ─── 1. Auth (Public) ──────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/login", limit(limiters.Login), handlers.Auth.Login)
	}

	// ─── 2. Teacher API (JWT + active session) ─────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.NoStore(), middleware.RequireJWT(authService), middleware.CheckSession(authService))
	{
		api.GET("/auth/me", handlers.Auth.Me)
		api.POST("/auth/logout", handlers.Auth.Logout)

		api.GET("/profile", handlers.Profile.Get)
		api.PUT("/profile", handlers.Profile.Update)

		generate := api.Group("/generate")
		generate.Use(limit(limiters.Generate))
		{
			generate.POST("/soal", handlers.Generate.Soal)
			generate.POST("/modul", handlers.Generate.Modul)
		}

		docs := api.Group("/documents")
		{
			docs.GET("", handlers.Document.List)
			docs.GET("/:id", handlers.Document.Get)
			docs.PUT("/:id", handlers.Document.Update)
			docs.DELETE("/:id", handlers.Document.Delete)

			ed := docs.Group("/:id/editor")
			{
				ed.POST("", handlers.Editor.Open)
				ed.GET("", handlers.Editor.Get)
				ed.DELETE("", handlers.Editor.Discard)
				ed.PATCH("/title", handlers.Editor.SetTitle)
				ed.PATCH("/modul", handlers.Editor.SetModul)
				ed.PATCH("/questions/:index/prompt", handlers.Editor.SetPrompt)
				ed.PATCH("/questions/:index/option", handlers.Editor.SetOption)
				ed.PATCH("/questions/:index/answer", handlers.Editor.SetAnswer)
				ed.PATCH("/questions/:index/explanation", handlers.Editor.SetExplanation)
				ed.GET("/questions/:index/choices", handlers.Editor.Choices)
				ed.POST("/save", handlers.Editor.Save)
			}
		}

		api.GET("/system/metrics", handlers.System.Metrics)
	}

	// ─── 3. Quiz WebSocket (token via query) ───────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireWSAuth(authService), middleware.CheckSession(authService))
	{
		wsGroup.GET("/quiz/:document_id", handlers.Quiz.Stream)
	}

	return router
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}

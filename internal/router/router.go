package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/handlers"
	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/middleware"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
	"github.com/bratatouille-bot/cereal-api/internal/service"
	"github.com/bratatouille-bot/cereal-api/internal/store"
	"github.com/bratatouille-bot/cereal-api/internal/ws"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, fileStore *store.FileStore) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Transcription", "X-Response"}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Rate limit per client IP
	r.Use(middleware.RateLimitByIP(20, 5*time.Minute, 10*time.Minute))

	// Health route for device clients and deploy checks
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	// Repositories over the shared file store
	chatRepo := repository.NewChatRepository(fileStore)
	recipeRepo := repository.NewRecipeRepository(fileStore)
	progress := service.NewProgressService(recipeRepo)

	// AI provider setup
	var textProvider ai.TextProvider
	if cfg.EnvVars.TextProvider == "anthropic" {
		textProvider = ai.NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey)
	} else {
		textProvider = ai.NewOpenAITextProvider(cfg.EnvVars.OpenAIAPIKey, cfg.EnvVars.OpenAIBaseURL, cfg.EnvVars.TextModel)
	}
	speechProvider := ai.NewWhisperProvider(cfg.EnvVars.OpenAIAPIKey, cfg.EnvVars.OpenAIBaseURL)
	visionProvider := ai.NewOpenAIVisionProvider(cfg.EnvVars.OpenAIAPIKey, cfg.EnvVars.OpenAIBaseURL)
	synthesizer := ai.NewElevenLabsProvider(
		cfg.EnvVars.ElevenLabsAPIKey,
		cfg.EnvVars.ElevenLabsVoiceID,
		cfg.EnvVars.VoiceStability,
		cfg.EnvVars.VoiceSimilarityBoost,
	)

	// WebSocket hub for live session updates
	hub := ws.NewHub()
	go hub.Run()

	cookingService := service.NewCookingService(cfg, chatRepo, progress, speechProvider, textProvider, synthesizer)
	sessionHandler := ws.NewSessionHandler(hub, cookingService)

	visionService := service.NewVisionService(cfg, visionProvider, progress, sessionHandler)
	archiveService := service.NewArchiveService(cfg)

	visionHandler := handlers.NewVisionHandler(visionService)
	audioHandler := handlers.NewAudioHandler(cookingService, archiveService)
	cookingHandler := handlers.NewCookingHandler(cookingService, progress)

	// Vision routes
	r.POST("/vision/analyze-image", visionHandler.AnalyzeImage)

	// Audio routes
	r.POST("/audio/speech-to-text", audioHandler.SpeechToText)
	r.POST("/audio/process", audioHandler.ProcessAudio)

	// Cooking session routes
	cooking := r.Group("/cooking")
	{
		cooking.POST("/generate-response", cookingHandler.GenerateResponse)
		cooking.GET("/chat-history/:session_id", cookingHandler.GetChatHistory)
		cooking.GET("/sessions", cookingHandler.ListSessions)
		cooking.GET("/state/:session_id", cookingHandler.GetState)
		cooking.POST("/audio-chat", cookingHandler.AudioChat)
		cooking.POST("/speak", cookingHandler.Speak)
	}

	// WebSocket route for live session updates
	r.GET("/ws/session/:session_id", sessionHandler.HandleSession)

	return r
}

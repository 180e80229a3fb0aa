package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/stackmentor/stackmentor/internal/adapter/ai"
	"github.com/stackmentor/stackmentor/internal/adapter/store"
	"github.com/stackmentor/stackmentor/internal/handler"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/resilience"
	"github.com/stackmentor/stackmentor/internal/service"
	"github.com/stackmentor/stackmentor/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting StackMentor",
		"port", cfg.Port,
		"ai_provider", cfg.AIProvider,
		"embedding_dimension", cfg.EmbeddingDimension,
		"similarity_threshold", cfg.SimilarityThreshold,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)
	questionStore := store.NewQuestionStore(pgStore)

	// ── AI backend ───────────────────────────────────────────────────────
	var embedder port.Embedder
	var generator port.Generator
	switch cfg.AIProvider {
	case "ollama":
		ollama := ai.NewOllamaProvider(ai.OllamaConfig{
			BaseURL:    cfg.OllamaBaseURL,
			EmbedModel: cfg.OllamaEmbedModel,
			Token:      cfg.OllamaToken,
		})
		embedder, generator = ollama, ollama
	default:
		gemini := ai.NewGeminiProvider(ai.GeminiConfig{
			BaseURL:    cfg.GeminiBaseURL,
			APIKey:     cfg.GeminiAPIKey,
			EmbedModel: cfg.GeminiEmbedModel,
		})
		embedder, generator = gemini, gemini
	}

	cache := ai.NewEmbeddingCache(cfg.CacheCapacity)
	cachedEmbedder := ai.NewCachedEmbedder(embedder, cache)

	// ── Services ─────────────────────────────────────────────────────────
	searchService := service.NewSearchService(cachedEmbedder, vectorStore, questionStore, cfg.SimilarityThreshold)
	contextBuilder := service.NewContextBuilder(cfg.MaxSimilarQuestions, cfg.AnswerExcerptChars)

	genCfg := service.DefaultGenerationConfig()
	genCfg.TextModels = cfg.TextModels
	genCfg.DiagramModels = cfg.DiagramModels
	genCfg.MaxRetries = cfg.GenerationRetries
	genCfg.OverloadedBase = cfg.OverloadedBackoff
	genCfg.RateLimitBase = cfg.RateLimitBackoff
	genCfg.SearchLimit = cfg.SearchLimit

	generationService := service.NewGenerationService(generator, questionStore, searchService, contextBuilder, genCfg)
	chatService := service.NewChatService(generator, searchService, contextBuilder, cfg.ChatModel, resilience.DefaultConfig(), cfg.SearchLimit)
	ingestService := service.NewIngestService(cachedEmbedder, vectorStore, resilience.DefaultConfig(), cfg.IngestBatchSize, cfg.IngestChunkDelay)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	api := app.Group("/api/v1")

	handler.NewAnswerHandler(generationService).Register(api)
	handler.NewChatHandler(chatService).Register(api)
	handler.NewSearchHandler(searchService, questionStore, cfg.SearchLimit).Register(api)
	handler.NewIngestHandler(ingestService).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

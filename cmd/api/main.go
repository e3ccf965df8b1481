package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/smart-interviewer/internal/config"
	"alfredoptarigan/smart-interviewer/internal/handlers"
	"alfredoptarigan/smart-interviewer/internal/repositories"
	"alfredoptarigan/smart-interviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx := context.Background()

	// Question bank: a missing or broken file leaves the store empty
	questions := services.LoadQuestionStore(cfg.Questions.Path)

	// Optional evaluation log
	logRepo, closeLog := initEvaluationLog(ctx, cfg)
	defer closeLog()

	// Language model
	model, err := initChatModel(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize language model: %v", err)
	}
	log.Printf("✅ Language model %q via %s initialized", cfg.LLM.Model, cfg.LLM.Provider)

	// Speech model, loaded once
	transcriber := loadTranscriber(ctx, cfg)
	worker := services.NewTranscriptionWorker(transcriber, cfg.STT.Concurrency)
	worker.Start(ctx)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	evaluatorService := services.NewEvaluatorService(questions, model, logRepo, cfg.LLM.Timeout)
	assistantService := services.NewAssistantService(model, cfg.LLM.Timeout)
	log.Println("✅ Services initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Smart Interviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + cfg.STT.Timeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Questions:         questions,
		Evaluator:         evaluatorService,
		Assistant:         assistantService,
		Storage:           storageService,
		Transcriber:       worker,
		MaxFileSize:       cfg.Storage.MaxFileSize,
		TranscribeTimeout: cfg.STT.Timeout,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		worker.Stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func initChatModel(ctx context.Context, cfg *config.Config) (services.ChatModel, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return services.NewGeminiChatModel(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model)
	default:
		return services.NewOllamaChatModel(cfg.LLM.URL, cfg.LLM.Model, cfg.LLM.Timeout), nil
	}
}

func loadTranscriber(ctx context.Context, cfg *config.Config) services.Transcriber {
	switch cfg.STT.Provider {
	case config.ProviderNone:
		log.Println("⚠️  Speech-to-text disabled by configuration")
		return services.DisabledTranscriber()
	case config.ProviderGemini:
		return services.LoadTranscriber(ctx, "gemini", func(ctx context.Context) (services.Transcriber, error) {
			return services.NewGeminiTranscriber(ctx, cfg.LLM.GeminiAPIKey, config.DefaultGeminiModel)
		})
	default:
		return services.LoadTranscriber(ctx, "whisper/"+cfg.STT.WhisperModel, func(ctx context.Context) (services.Transcriber, error) {
			return services.NewWhisperTranscriber(ctx, cfg.STT.WhisperURL, cfg.STT.WhisperModel, cfg.STT.Timeout)
		})
	}
}

// initEvaluationLog connects the configured log backend. Failure to connect
// only disables logging; evaluations keep working.
func initEvaluationLog(ctx context.Context, cfg *config.Config) (repositories.EvaluationLogRepository, func()) {
	noop := func() {}

	switch cfg.EvaluationLog.Backend {
	case config.BackendPostgres:
		db, err := config.InitDatabase(cfg)
		if err != nil {
			log.Printf("⚠️  Evaluation log disabled: %v", err)
			return nil, noop
		}
		return repositories.NewEvaluationLogRepository(db), func() {
			config.CloseDatabase(db)
		}

	case config.BackendMongo:
		client, err := config.InitMongo(ctx, cfg)
		if err != nil {
			log.Printf("⚠️  Evaluation log disabled: %v", err)
			return nil, noop
		}
		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return repositories.NewMongoEvaluationLogRepository(collection), func() {
			_ = client.Disconnect(context.Background())
		}

	default:
		log.Println("ℹ️  No evaluation log backend configured")
		return nil, noop
	}
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/smart-interviewer/internal/services"
)

// Dependencies is built once at startup and shared by every handler. Nothing
// in it is mutated after construction.
type Dependencies struct {
	Questions         services.QuestionStore
	Evaluator         services.EvaluatorService
	Assistant         services.AssistantService
	Storage           services.StorageService
	Transcriber       services.TranscriptionWorker
	MaxFileSize       int64
	TranscribeTimeout time.Duration
}

func RegisterRoutes(app *fiber.App, deps Dependencies) {
	questionHandler := NewQuestionHandler(deps.Questions)
	evaluationHandler := NewEvaluationHandler(deps.Evaluator)
	audioHandler := NewAudioHandler(
		deps.Questions,
		deps.Evaluator,
		deps.Storage,
		deps.Transcriber,
		deps.MaxFileSize,
		deps.TranscribeTimeout,
	)
	chatHandler := NewChatHandler(deps.Assistant)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":            "healthy",
			"time":              time.Now(),
			"questions":         len(deps.Questions.All()),
			"transcriber_ready": deps.Transcriber.Ready(),
		})
	})

	app.Get("/topics", questionHandler.HandleListTopics)
	app.Get("/get_question", questionHandler.HandleGetQuestion)
	app.Post("/evaluate_answer", evaluationHandler.HandleEvaluate)
	app.Post("/evaluate_audio", audioHandler.HandleEvaluateAudio)
	app.Post("/chat", chatHandler.HandleChat)
}

// ErrorHandler renders errors that escape a handler, including recovered
// panics, as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

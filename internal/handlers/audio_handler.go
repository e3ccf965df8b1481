package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/smart-interviewer/internal/models"
	"alfredoptarigan/smart-interviewer/internal/services"
)

type AudioHandler struct {
	questions   services.QuestionStore
	evaluator   services.EvaluatorService
	storage     services.StorageService
	transcriber services.TranscriptionWorker
	maxFileSize int64
	timeout     time.Duration
}

func NewAudioHandler(
	questions services.QuestionStore,
	evaluator services.EvaluatorService,
	storage services.StorageService,
	transcriber services.TranscriptionWorker,
	maxFileSize int64,
	timeout time.Duration,
) *AudioHandler {
	return &AudioHandler{
		questions:   questions,
		evaluator:   evaluator,
		storage:     storage,
		transcriber: transcriber,
		maxFileSize: maxFileSize,
		timeout:     timeout,
	}
}

// HandleEvaluateAudio handles POST /evaluate_audio (multipart: question_id, audio_file).
// The uploaded recording is removed on every return path, including panics
// caught by the recover middleware.
func (h *AudioHandler) HandleEvaluateAudio(c *fiber.Ctx) error {
	questionID := strings.TrimSpace(c.FormValue("question_id"))
	if questionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question_id is required",
		})
	}

	audioFile, err := c.FormFile("audio_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "audio_file is required",
		})
	}

	if audioFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("Audio file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	if _, ok := h.questions.FindByID(questionID); !ok {
		return evaluationError(c, services.ErrQuestionNotFound)
	}

	audioPath, err := h.storage.SaveTemp(audioFile)
	if err != nil {
		log.Printf("❌ Failed to save audio upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save audio file",
		})
	}
	defer h.storage.Remove(audioPath)

	ctx := c.UserContext()
	transcribeCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		transcribeCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	text, err := h.transcriber.Transcribe(transcribeCtx, audioPath)
	if err != nil {
		log.Printf("❌ Transcription failed for question %s: %v", questionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to transcribe audio",
		})
	}

	result, err := h.evaluator.Evaluate(ctx, models.EvaluateRequest{
		QuestionID: questionID,
		AnswerText: text,
	})
	if err != nil {
		return evaluationError(c, err)
	}

	result.TranscribedText = &text
	return c.JSON(result)
}

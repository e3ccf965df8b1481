package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/smart-interviewer/internal/models"
	"alfredoptarigan/smart-interviewer/internal/services"
)

type QuestionHandler struct {
	questions services.QuestionStore
}

func NewQuestionHandler(questions services.QuestionStore) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
	}
}

// HandleGetQuestion handles GET /get_question?topic=...
func (h *QuestionHandler) HandleGetQuestion(c *fiber.Ctx) error {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "topic is required",
		})
	}

	question, ok := h.questions.RandomByTopic(topic)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No questions found for this topic.",
		})
	}

	return c.JSON(question)
}

// HandleListTopics handles GET /topics
func (h *QuestionHandler) HandleListTopics(c *fiber.Ctx) error {
	return c.JSON(models.TopicsResponse{Topics: h.questions.Topics()})
}

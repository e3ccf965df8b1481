package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/smart-interviewer/internal/models"
	"alfredoptarigan/smart-interviewer/internal/repositories"
)

const (
	FallbackScore   = 70
	FallbackSummary = "Good effort. The AI understood your answer but failed to format the score."

	SystemErrorScore   = 0
	SystemErrorSummary = "System Error: Could not evaluate answer."

	logWriteTimeout = 5 * time.Second
)

// EvaluatorService grades one answer against one question. ErrQuestionNotFound
// is the only error it returns; every model or parsing failure is turned into
// a well-formed result.
type EvaluatorService interface {
	Evaluate(ctx context.Context, req models.EvaluateRequest) (*models.EvaluationResult, error)
}

type evaluatorService struct {
	questions     QuestionStore
	model         ChatModel
	logRepo       repositories.EvaluationLogRepository
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

// NewEvaluatorService wires the grading pipeline. logRepo may be nil when no
// evaluation log backend is configured. timeout bounds each model call; zero
// means no extra bound beyond ctx.
func NewEvaluatorService(
	questions QuestionStore,
	model ChatModel,
	logRepo repositories.EvaluationLogRepository,
	timeout time.Duration,
) EvaluatorService {
	return &evaluatorService{
		questions:     questions,
		model:         model,
		logRepo:       logRepo,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

func (e *evaluatorService) Evaluate(ctx context.Context, req models.EvaluateRequest) (*models.EvaluationResult, error) {
	question, ok := e.questions.FindByID(req.QuestionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, req.QuestionID)
	}

	prompt := e.promptBuilder.BuildGradingPrompt(question, req.AnswerText)
	result := e.grade(ctx, question.ID, prompt)

	e.record(ctx, req, result)
	return result, nil
}

func (e *evaluatorService) grade(ctx context.Context, questionID, prompt string) (result *models.EvaluationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ CRITICAL: grading panicked for question %s: %v", questionID, r)
			result = SystemErrorResult()
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.model.Complete(ctx, []ChatMessage{{Role: RoleUser, Content: prompt}})
	if err != nil {
		log.Printf("❌ CRITICAL: model call failed for question %s: %v", questionID, err)
		return SystemErrorResult()
	}

	log.Printf("🤖 Model reply for question %s (%d characters): %s", questionID, len(raw), raw)

	parsed, err := ParseGradingReply(raw)
	switch {
	case errors.Is(err, ErrMalformedModelOutput):
		log.Printf("⚠️  Model did not return valid JSON for question %s: %v", questionID, err)
		return FormatFallbackResult()
	case err != nil:
		log.Printf("❌ CRITICAL: could not read grading reply for question %s: %v", questionID, err)
		return SystemErrorResult()
	}

	return parsed
}

func (e *evaluatorService) record(ctx context.Context, req models.EvaluateRequest, result *models.EvaluationResult) {
	if e.logRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
	defer cancel()

	entry := &models.EvaluationLog{
		ID:         uuid.New(),
		QuestionID: req.QuestionID,
		Answer:     req.AnswerText,
		Score:      result.OverallScore,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.logRepo.Record(ctx, entry); err != nil {
		log.Printf("⚠️  Failed to write evaluation log for question %s: %v", req.QuestionID, err)
	}
}

// FormatFallbackResult is returned when the model answered but no JSON object
// could be read from it. A formatting failure is not evidence of a wrong
// answer, so it carries partial credit.
func FormatFallbackResult() *models.EvaluationResult {
	return &models.EvaluationResult{
		RubricEvaluation: []models.RubricItemVerdict{},
		OverallScore:     FallbackScore,
		FinalSummary:     FallbackSummary,
	}
}

// SystemErrorResult is returned for any other failure while calling the
// model or reading its reply.
func SystemErrorResult() *models.EvaluationResult {
	return &models.EvaluationResult{
		RubricEvaluation: []models.RubricItemVerdict{},
		OverallScore:     SystemErrorScore,
		FinalSummary:     SystemErrorSummary,
	}
}

// ParseGradingReply reads a grading verdict out of free-form model text.
// It returns an error wrapping ErrMalformedModelOutput when no JSON object can
// be parsed, and a plain error when the object parses but its fields have the
// wrong shape.
func ParseGradingReply(raw string) (*models.EvaluationResult, error) {
	jsonStr, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedModelOutput)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	score := 0.0
	if v, ok := fields["overall_score"]; ok && !isJSONNull(v) {
		s, err := parseScore(v)
		if err != nil {
			return nil, err
		}
		score = s
	}

	result := &models.EvaluationResult{
		RubricEvaluation: []models.RubricItemVerdict{},
		OverallScore:     NormalizeScore(score),
	}

	if v, ok := fields["rubric_evaluation"]; ok && !isJSONNull(v) {
		verdicts, err := parseVerdicts(v)
		if err != nil {
			return nil, err
		}
		result.RubricEvaluation = verdicts
	}

	if v, ok := fields["final_summary"]; ok && !isJSONNull(v) {
		if err := json.Unmarshal(v, &result.FinalSummary); err != nil {
			return nil, fmt.Errorf("final_summary: %w", err)
		}
	}

	return result, nil
}

// ExtractJSONObject returns the text from the first '{' to the last '}'
// inclusive. It does not balance braces, so replies holding several separate
// objects, or braces inside strings outside the object, can yield invalid
// JSON; the caller treats that as malformed output.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// NormalizeScore maps a model score onto an integer in [0,100]. Scores in
// (0,1] are fractions and scores in (1,10] are on a five-point scale; both
// are scaled up before clamping. Everything else passes through and is
// clamped.
func NormalizeScore(score float64) int {
	switch {
	case score > 0 && score <= 1:
		score = scaleScore(score, 100)
	case score > 1 && score <= 10:
		score = scaleScore(score, 20)
	}

	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Floor(score))
}

func parseScore(raw json.RawMessage) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("overall_score: %w", err)
	}

	switch s := v.(type) {
	case json.Number:
		f, err := s.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("overall_score: %w", err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("overall_score %q is not a number", s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("overall_score has unsupported type %T", v)
	}
}

// scaleScore multiplies and rounds to nine decimals so float error such as
// 0.29*100 = 28.999999999999996 does not lose a point when truncated.
func scaleScore(score, factor float64) float64 {
	return math.Round(score*factor*1e9) / 1e9
}

// parseVerdicts reads rubric_evaluation item by item. The field itself must
// be a list; items that are not objects, or whose met flag cannot be read as
// a boolean, are skipped.
func parseVerdicts(raw json.RawMessage) ([]models.RubricItemVerdict, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("rubric_evaluation: %w", err)
	}

	verdicts := make([]models.RubricItemVerdict, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}

		met, ok := parseMet(fields["met"])
		if !ok {
			continue
		}

		verdicts = append(verdicts, models.RubricItemVerdict{
			Point:    jsonText(fields["point"]),
			Met:      met,
			Feedback: jsonText(fields["feedback"]),
		})
	}
	return verdicts, nil
}

// parseMet accepts a JSON boolean or a string spelling of one. An absent or
// null flag reads as false.
func parseMet(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 || isJSONNull(raw) {
		return false, true
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// jsonText returns a JSON string's value, or the raw text of any other
// non-null value.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || isJSONNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

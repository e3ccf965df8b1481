package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/smart-interviewer/internal/models"
)

func ohmStore() QuestionStore {
	return NewQuestionStore([]models.Question{{
		ID:       "q1",
		Topic:    "ECE",
		Question: "Explain Ohm's law",
		ScoringRubric: []models.RubricItem{
			{Point: "V=IR", ExpectedAnswer: "voltage equals current times resistance"},
		},
	}})
}

func TestEvaluateOhmsLaw(t *testing.T) {
	model := &fakeChatModel{
		reply: `{"rubric_evaluation":[{"point":"V=IR","met":true,"feedback":"correct"}],"overall_score":0.9,"final_summary":"Good"}`,
	}
	svc := NewEvaluatorService(ohmStore(), model, nil, time.Second)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{
		QuestionID: "q1",
		AnswerText: "voltage is current times resistance",
	})
	require.NoError(t, err)

	assert.Equal(t, 90, result.OverallScore)
	assert.Equal(t, "Good", result.FinalSummary)
	assert.Equal(t, []models.RubricItemVerdict{{Point: "V=IR", Met: true, Feedback: "correct"}}, result.RubricEvaluation)
	assert.Nil(t, result.TranscribedText)

	require.Equal(t, 1, model.callCount())
	msgs := model.calls[0]
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `Candidate Answer: "voltage is current times resistance"`)
	assert.Contains(t, msgs[0].Content, "1. V=IR: voltage equals current times resistance")
}

func TestEvaluateUnknownQuestion(t *testing.T) {
	model := &fakeChatModel{reply: `{"overall_score": 100}`}
	logRepo := &fakeLogRepo{}
	svc := NewEvaluatorService(ohmStore(), model, logRepo, time.Second)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "missing"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuestionNotFound))
	assert.Nil(t, result)
	assert.Zero(t, model.callCount(), "model must not be called for an unknown question")
	assert.Empty(t, logRepo.entries)
}

func TestEvaluateFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		model   *fakeChatModel
		score   int
		summary string
	}{
		{"no json", &fakeChatModel{reply: "I think the answer is pretty good."}, FallbackScore, FallbackSummary},
		{"broken json", &fakeChatModel{reply: `Here you go: {"overall_score": 90, "final_summary": }`}, FallbackScore, FallbackSummary},
		{"reversed braces", &fakeChatModel{reply: "} nothing {"}, FallbackScore, FallbackSummary},
		{"transport error", &fakeChatModel{err: &ServiceFailure{Op: "chat request", Err: errors.New("connection refused")}}, SystemErrorScore, SystemErrorSummary},
		{"non-numeric score", &fakeChatModel{reply: `{"overall_score": "excellent"}`}, SystemErrorScore, SystemErrorSummary},
		{"bad rubric shape", &fakeChatModel{reply: `{"overall_score": 80, "rubric_evaluation": "all met"}`}, SystemErrorScore, SystemErrorSummary},
		{"model panics", &fakeChatModel{panicMsg: "boom"}, SystemErrorScore, SystemErrorSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEvaluatorService(ohmStore(), tt.model, nil, time.Second)

			result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "q1", AnswerText: "x"})
			require.NoError(t, err)

			assert.Equal(t, tt.score, result.OverallScore)
			assert.Equal(t, tt.summary, result.FinalSummary)
			assert.NotNil(t, result.RubricEvaluation)
			assert.Empty(t, result.RubricEvaluation)
		})
	}
}

func TestEvaluateKeepsScoreWithLooseRubric(t *testing.T) {
	model := &fakeChatModel{reply: `{"rubric_evaluation":[{"point":"V=IR","met":"true","feedback":"ok"}],"overall_score":85,"final_summary":"Good"}`}
	svc := NewEvaluatorService(ohmStore(), model, nil, time.Second)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "q1", AnswerText: "V=IR"})
	require.NoError(t, err)

	assert.Equal(t, 85, result.OverallScore)
	assert.Equal(t, "Good", result.FinalSummary)
	require.Len(t, result.RubricEvaluation, 1)
	assert.True(t, result.RubricEvaluation[0].Met)
}

func TestEvaluateTimeoutYieldsSystemError(t *testing.T) {
	model := &fakeChatModel{block: true}
	svc := NewEvaluatorService(ohmStore(), model, nil, 20*time.Millisecond)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "q1"})
	require.NoError(t, err)

	assert.Equal(t, SystemErrorScore, result.OverallScore)
	assert.Equal(t, SystemErrorSummary, result.FinalSummary)
	assert.ErrorIs(t, model.ctxErr, context.DeadlineExceeded)
}

func TestEvaluateRecordsLog(t *testing.T) {
	logRepo := &fakeLogRepo{}
	model := &fakeChatModel{reply: "Sure! {\"overall_score\": 4, \"final_summary\": \"ok\"} Thanks."}
	svc := NewEvaluatorService(ohmStore(), model, logRepo, time.Second)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "q1", AnswerText: "V=IR"})
	require.NoError(t, err)
	assert.Equal(t, 80, result.OverallScore)

	require.Len(t, logRepo.entries, 1)
	entry := logRepo.entries[0]
	assert.Equal(t, "q1", entry.QuestionID)
	assert.Equal(t, "V=IR", entry.Answer)
	assert.Equal(t, 80, entry.Score)
	assert.False(t, entry.Timestamp.IsZero())
	assert.NotEqual(t, [16]byte{}, [16]byte(entry.ID))
}

func TestEvaluateLogFailureDoesNotAffectResult(t *testing.T) {
	logRepo := &fakeLogRepo{err: errors.New("db down")}
	model := &fakeChatModel{reply: `{"overall_score": 42, "final_summary": "meh"}`}
	svc := NewEvaluatorService(ohmStore(), model, logRepo, time.Second)

	result, err := svc.Evaluate(context.Background(), models.EvaluateRequest{QuestionID: "q1"})
	require.NoError(t, err)
	assert.Equal(t, 42, result.OverallScore)
	assert.Equal(t, "meh", result.FinalSummary)
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.85, 85},
		{0.9, 90},
		{0.29, 29},
		{4, 80},
		{42, 42},
		{150, 100},
		{0, 0},
		{1, 100},
		{1.5, 30},
		{5, 100},
		{10, 100},
		{10.5, 10},
		{11, 11},
		{99.9, 99},
		{100, 100},
		{-3, 0},
		{-0.5, 0},
		{4.35, 87},
		{42.9999999995, 42},
		{99.99999999, 99},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeScore(tt.in), "NormalizeScore(%v)", tt.in)
	}
}

func TestNormalizeScoreStaysInRange(t *testing.T) {
	for s := -50.0; s <= 250; s += 0.25 {
		got := NormalizeScore(s)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"prose", "Sure! {\"overall_score\": 90, \"x\": {\"y\": 1}} Thanks.", "{\"overall_score\": 90, \"x\": {\"y\": 1}}", true},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"none", "no json here", "", false},
		{"only open", "{ oops", "", false},
		{"reversed", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGradingReply(t *testing.T) {
	t.Run("surrounding prose", func(t *testing.T) {
		r, err := ParseGradingReply("Sure! {\"overall_score\": 90, \"final_summary\": \"Solid\"} Thanks.")
		require.NoError(t, err)
		assert.Equal(t, 90, r.OverallScore)
		assert.Equal(t, "Solid", r.FinalSummary)
		assert.NotNil(t, r.RubricEvaluation)
	})

	t.Run("missing score defaults to zero", func(t *testing.T) {
		r, err := ParseGradingReply(`{"final_summary": "no score"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, r.OverallScore)
	})

	t.Run("null fields", func(t *testing.T) {
		r, err := ParseGradingReply(`{"overall_score": null, "rubric_evaluation": null, "final_summary": null}`)
		require.NoError(t, err)
		assert.Equal(t, 0, r.OverallScore)
		assert.Empty(t, r.FinalSummary)
		assert.NotNil(t, r.RubricEvaluation)
	})

	t.Run("numeric string score", func(t *testing.T) {
		r, err := ParseGradingReply(`{"overall_score": " 85% "}`)
		require.NoError(t, err)
		assert.Equal(t, 85, r.OverallScore)
	})

	t.Run("partial rubric kept in order", func(t *testing.T) {
		r, err := ParseGradingReply(`{"rubric_evaluation":[{"point":"B","met":false,"feedback":"missing"},{"point":"A","met":true}],"overall_score":77}`)
		require.NoError(t, err)
		require.Len(t, r.RubricEvaluation, 2)
		assert.Equal(t, "B", r.RubricEvaluation[0].Point)
		assert.False(t, r.RubricEvaluation[0].Met)
		assert.Equal(t, "A", r.RubricEvaluation[1].Point)
		assert.Empty(t, r.RubricEvaluation[1].Feedback)
	})

	t.Run("string met flags are read", func(t *testing.T) {
		r, err := ParseGradingReply(`{"rubric_evaluation":[{"point":"V=IR","met":"true","feedback":"ok"},{"point":"Units","met":" False "}],"overall_score":85,"final_summary":"Good"}`)
		require.NoError(t, err)
		assert.Equal(t, 85, r.OverallScore)
		assert.Equal(t, "Good", r.FinalSummary)
		assert.Equal(t, []models.RubricItemVerdict{
			{Point: "V=IR", Met: true, Feedback: "ok"},
			{Point: "Units", Met: false},
		}, r.RubricEvaluation)
	})

	t.Run("unreadable verdicts are skipped", func(t *testing.T) {
		r, err := ParseGradingReply(`{"rubric_evaluation":["V=IR met",{"point":"A","met":"partially"},{"point":3,"met":1},{"point":"B","met":true,"feedback":["short"]}],"overall_score":0.6}`)
		require.NoError(t, err)
		assert.Equal(t, 60, r.OverallScore)
		assert.Equal(t, []models.RubricItemVerdict{
			{Point: "B", Met: true, Feedback: `["short"]`},
		}, r.RubricEvaluation)
	})

	t.Run("out of range score is clamped", func(t *testing.T) {
		r, err := ParseGradingReply(`{"overall_score": 1e400, "final_summary": "Huge"}`)
		require.NoError(t, err)
		assert.Equal(t, 100, r.OverallScore)
		assert.Equal(t, "Huge", r.FinalSummary)

		r, err = ParseGradingReply(`{"overall_score": "-1e400"}`)
		require.NoError(t, err)
		assert.Equal(t, 0, r.OverallScore)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseGradingReply("{not json}")
		assert.ErrorIs(t, err, ErrMalformedModelOutput)
	})

	t.Run("wrong field type is not malformed", func(t *testing.T) {
		_, err := ParseGradingReply(`{"overall_score": true}`)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformedModelOutput)
	})
}

func TestFixedResults(t *testing.T) {
	f := FormatFallbackResult()
	assert.Equal(t, 70, f.OverallScore)
	assert.Empty(t, f.RubricEvaluation)
	assert.NotNil(t, f.RubricEvaluation)

	s := SystemErrorResult()
	assert.Equal(t, 0, s.OverallScore)
	assert.Equal(t, "System Error: Could not evaluate answer.", s.FinalSummary)

	f.OverallScore = 1
	assert.Equal(t, 70, FormatFallbackResult().OverallScore, "each call returns a fresh value")
}

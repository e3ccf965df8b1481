package models

type EvaluateRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// RubricItemVerdict is the model's judgement on one rubric point. The model
// may skip points, so there is no guarantee of one verdict per rubric item.
type RubricItemVerdict struct {
	Point    string `json:"point"`
	Met      bool   `json:"met"`
	Feedback string `json:"feedback"`
}

// EvaluationResult is what every evaluation returns. OverallScore is always
// within [0,100].
type EvaluationResult struct {
	RubricEvaluation []RubricItemVerdict `json:"rubric_evaluation"`
	OverallScore     int                 `json:"overall_score"`
	FinalSummary     string              `json:"final_summary"`
	TranscribedText  *string             `json:"transcribed_text,omitempty"`
}

package models

type RubricItem struct {
	Point          string `json:"point" yaml:"point"`
	ExpectedAnswer string `json:"expected_answer" yaml:"expected_answer"`
}

type Question struct {
	ID            string       `json:"id" yaml:"id"`
	Topic         string       `json:"topic" yaml:"topic"`
	Question      string       `json:"question" yaml:"question"`
	ScoringRubric []RubricItem `json:"scoring_rubric" yaml:"scoring_rubric"`
}

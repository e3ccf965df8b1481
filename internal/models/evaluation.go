package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationLog is the append-only record written after each evaluation when
// an evaluation log backend is configured.
type EvaluationLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuestionID string    `gorm:"type:text;index" json:"question_id"`
	Answer     string    `gorm:"type:text" json:"answer"`
	Score      int       `gorm:"not null" json:"score"`
	Timestamp  time.Time `gorm:"type:timestamp;default:now()" json:"timestamp"`
}

func (EvaluationLog) TableName() string {
	return "evaluation_logs"
}

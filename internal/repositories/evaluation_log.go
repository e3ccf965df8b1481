package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/smart-interviewer/internal/models"
)

// EvaluationLogRepository is an append-only sink for finished evaluations.
type EvaluationLogRepository interface {
	Record(ctx context.Context, entry *models.EvaluationLog) error
}

type evaluationLogRepository struct {
	db *gorm.DB
}

func NewEvaluationLogRepository(db *gorm.DB) EvaluationLogRepository {
	return &evaluationLogRepository{db: db}
}

func (r *evaluationLogRepository) Record(ctx context.Context, entry *models.EvaluationLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create evaluation log: %w", err)
	}
	return nil
}

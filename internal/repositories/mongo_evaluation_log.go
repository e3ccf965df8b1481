package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alfredoptarigan/smart-interviewer/internal/models"
)

// documentInserter is the part of *mongo.Collection the log sink needs.
type documentInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

type mongoEvaluationLogRepository struct {
	collection documentInserter
}

func NewMongoEvaluationLogRepository(collection *mongo.Collection) EvaluationLogRepository {
	return &mongoEvaluationLogRepository{collection: collection}
}

func (r *mongoEvaluationLogRepository) Record(ctx context.Context, entry *models.EvaluationLog) error {
	doc := bson.D{
		{Key: "_id", Value: entry.ID.String()},
		{Key: "question_id", Value: entry.QuestionID},
		{Key: "answer", Value: entry.Answer},
		{Key: "score", Value: entry.Score},
		{Key: "timestamp", Value: entry.Timestamp},
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert evaluation log: %w", err)
	}
	return nil
}

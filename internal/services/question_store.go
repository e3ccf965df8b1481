package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/smart-interviewer/internal/models"
)

type QuestionStore interface {
	FindByID(id string) (*models.Question, bool)
	FindByTopic(topic string) []models.Question
	RandomByTopic(topic string) (*models.Question, bool)
	Topics() []string
	All() []models.Question
}

// questionStore is read-only after construction, so it is safe to share
// between request goroutines without locking.
type questionStore struct {
	questions []models.Question
	pick      func(n int) int
}

func NewQuestionStore(questions []models.Question) QuestionStore {
	return &questionStore{
		questions: questions,
		pick:      rand.IntN,
	}
}

// LoadQuestionStore reads the question bank at path. Any read or parse error
// is logged and yields an empty store; the service keeps running and every
// lookup reports not found.
func LoadQuestionStore(path string) QuestionStore {
	log.Printf("📚 Loading question bank from %s...", path)

	questions, err := ReadQuestionBank(path)
	if err != nil {
		log.Printf("⚠️  Could not load question bank: %v", err)
		return NewQuestionStore(nil)
	}

	log.Printf("✅ Loaded %d questions", len(questions))
	return NewQuestionStore(questions)
}

// ReadQuestionBank decodes a question bank file. The format is picked from
// the extension: .yaml/.yml for YAML, anything else is read as JSON.
func ReadQuestionBank(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var questions []models.Question
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &questions)
	default:
		err = json.Unmarshal(data, &questions)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return questions, nil
}

// FindByID returns the first question with the given id.
func (s *questionStore) FindByID(id string) (*models.Question, bool) {
	for i := range s.questions {
		if s.questions[i].ID == id {
			q := s.questions[i]
			return &q, true
		}
	}
	return nil, false
}

// FindByTopic returns every question whose topic contains topic, ignoring
// case. An empty slice is a normal result.
func (s *questionStore) FindByTopic(topic string) []models.Question {
	needle := strings.ToLower(topic)
	matches := make([]models.Question, 0)
	for _, q := range s.questions {
		if strings.Contains(strings.ToLower(q.Topic), needle) {
			matches = append(matches, q)
		}
	}
	return matches
}

func (s *questionStore) RandomByTopic(topic string) (*models.Question, bool) {
	matches := s.FindByTopic(topic)
	if len(matches) == 0 {
		return nil, false
	}
	q := matches[s.pick(len(matches))]
	return &q, true
}

// Topics lists distinct topics in first-seen order.
func (s *questionStore) Topics() []string {
	seen := make(map[string]bool)
	topics := make([]string, 0)
	for _, q := range s.questions {
		if !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	return topics
}

func (s *questionStore) All() []models.Question {
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

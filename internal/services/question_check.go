package services

import (
	"strings"

	"alfredoptarigan/smart-interviewer/internal/models"
)

type TopicCount struct {
	Topic string
	Count int
}

// QuestionBankReport summarizes problems in a question file. A bank with
// problems still loads; FindByID returns the first question for a repeated id.
type QuestionBankReport struct {
	Total         int
	Topics        []TopicCount
	DuplicateIDs  []string
	PaddedIDs     []string
	MissingIDs    int
	EmptyRubrics  []string
	EmptyQuestion []string
}

func (r *QuestionBankReport) HasProblems() bool {
	return len(r.DuplicateIDs) > 0 || len(r.PaddedIDs) > 0 || r.MissingIDs > 0 || len(r.EmptyRubrics) > 0 || len(r.EmptyQuestion) > 0
}

func CheckQuestionBank(questions []models.Question) *QuestionBankReport {
	report := &QuestionBankReport{Total: len(questions)}

	seen := make(map[string]int)
	topicIndex := make(map[string]int)

	for _, q := range questions {
		// Ids are matched exactly by FindByID, but request ids are trimmed,
		// so a padded id can never be looked up.
		id := q.ID
		switch {
		case strings.TrimSpace(id) == "":
			report.MissingIDs++
		case strings.TrimSpace(id) != id:
			report.PaddedIDs = append(report.PaddedIDs, id)
		}
		if strings.TrimSpace(id) != "" {
			seen[id]++
			if seen[id] == 2 {
				report.DuplicateIDs = append(report.DuplicateIDs, id)
			}
		}

		if i, ok := topicIndex[q.Topic]; ok {
			report.Topics[i].Count++
		} else {
			topicIndex[q.Topic] = len(report.Topics)
			report.Topics = append(report.Topics, TopicCount{Topic: q.Topic, Count: 1})
		}

		if len(q.ScoringRubric) == 0 {
			report.EmptyRubrics = append(report.EmptyRubrics, id)
		}
		if strings.TrimSpace(q.Question) == "" {
			report.EmptyQuestion = append(report.EmptyQuestion, id)
		}
	}

	return report
}

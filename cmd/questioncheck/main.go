package main

import (
	"flag"
	"log"
	"os"

	"alfredoptarigan/smart-interviewer/internal/config"
	"alfredoptarigan/smart-interviewer/internal/services"
)

func main() {
	cfg := config.Load()

	path := flag.String("f", cfg.Questions.Path, "question bank file (.json, .yaml or .yml)")
	flag.Parse()

	log.Printf("🔍 Checking question bank: %s", *path)

	questions, err := services.ReadQuestionBank(*path)
	if err != nil {
		log.Fatalf("❌ Failed to read question bank: %v", err)
	}

	report := services.CheckQuestionBank(questions)

	log.Printf("📚 %d questions in %d topics", report.Total, len(report.Topics))
	for _, tc := range report.Topics {
		log.Printf("   %-30s %d", tc.Topic, tc.Count)
	}

	for _, id := range report.DuplicateIDs {
		log.Printf("   ⚠️  Duplicate id: %s", id)
	}
	for _, id := range report.PaddedIDs {
		log.Printf("   ⚠️  Id has surrounding whitespace and cannot be requested: %q", id)
	}
	if report.MissingIDs > 0 {
		log.Printf("   ⚠️  %d questions have no id", report.MissingIDs)
	}
	for _, id := range report.EmptyRubrics {
		log.Printf("   ⚠️  Empty scoring rubric: %q", id)
	}
	for _, id := range report.EmptyQuestion {
		log.Printf("   ⚠️  Empty question text: %q", id)
	}

	if report.HasProblems() {
		log.Println("❌ Question bank has problems")
		os.Exit(1)
	}
	log.Println("✅ Question bank looks good")
}

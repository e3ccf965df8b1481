package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/smart-interviewer/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRubric renders one "n. point: expected_answer" line per rubric item,
// numbered from 1 in rubric order.
func (pb *PromptBuilder) BuildRubric(rubric []models.RubricItem) string {
	var b strings.Builder
	for i, item := range rubric {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, item.Point, item.ExpectedAnswer)
	}
	return b.String()
}

// BuildGradingPrompt creates the grading prompt for a single answer. The
// output is deterministic for a given question and answer.
func (pb *PromptBuilder) BuildGradingPrompt(question *models.Question, answerText string) string {
	return fmt.Sprintf(`You are an impartial, expert technical interviewer. Grade the candidate's answer based on the rubric.

Question: "%s"
Rubric Points:
%s
Candidate Answer: "%s"

--- FAIRNESS PROTOCOL ---
1. OBJECTIVITY: Grade solely on technical accuracy. Ignore spelling, grammar, phrasing or sentence structure unless it destroys meaning.
2. NO LENGTH BIAS: Do not penalize long answers if they contain the correct info. Do not penalize short answers if they hit the key points.
3. SEMANTIC MATCHING: Look for the meaning, not just exact keywords.
4. CULTURAL NEUTRALITY: Do not infer or judge based on the candidate's dialect or tone.

--- SCORING INSTRUCTIONS ---
- Scale: 0 to 100. (Passing is 60).
- If the candidate states the core concept, the score MUST be greater than 75.
- If the answer includes extra valid details, treat them as positive or neutral, NEVER negative.

--- OUTPUT FORMAT ---
Return ONLY a single raw JSON object (no markdown, no intro text, no text after it):
{
  "rubric_evaluation": [
    { "point": "Rubric Point 1", "met": true, "feedback": "Brief comment" }
  ],
  "overall_score": <integer 0-100>,
  "final_summary": "One sentence summary."
}`,
		question.Question, pb.BuildRubric(question.ScoringRubric), answerText)
}

// AssistantInstruction is the system prompt for the in-app helper chat.
const AssistantInstruction = `You are the 'Smart Interviewer Assistant'.
- Help students understand how to use this app: pick a topic, answer by typing or recording audio, then read the score and feedback.
- Explain technical concepts in ECE/Electronics if asked.
- Be encouraging and helpful.
- Never reveal or write out full answers to the interview questions. Give hints only.`

package grading

import (
	"context"
	"fmt"
	"strings"
)

// gradingRubric is the strict rubric for written answers: five criteria at
// twenty points each, with an auto-zero when the answer discusses the wrong
// company.
const gradingRubric = `You are an expert financial analyst grading a student's written answer about company analysis.

CRITICAL: Before grading, check if the answer references the CORRECT company. If the question asks about a specific company (indicated in the context), the answer MUST reference that company. If the answer discusses a different company or doesn't mention the expected company at all, give an overall_score of 0.

Grade the answer using this STRICT rubric (100 points total):

1. Clarity (20 points): organization and professional writing.
2. Evidence (20 points): cites specific data, metrics and quotes from the provided context.
3. Completeness (20 points): addresses all parts of the question.
4. Critical Thinking (20 points): analysis of implications and connections, not just description.
5. Risk Analysis (20 points): identifies and evaluates key risks with nuance.

Return your response as valid JSON in this EXACT format:
{
  "overall_score": <number 0-100>,
  "criteria": {
    "clarity": {"score": <0-20>, "feedback": "<one sentence>"},
    "evidence": {"score": <0-20>, "feedback": "<one sentence>"},
    "completeness": {"score": <0-20>, "feedback": "<one sentence>"},
    "critical_thinking": {"score": <0-20>, "feedback": "<one sentence>"},
    "risk_analysis": {"score": <0-20>, "feedback": "<one sentence>"}
  },
  "summary": "<2-3 sentence overall assessment>"
}`

type CriterionScore struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type WrittenFeedback struct {
	OverallScore float64                   `json:"overall_score"`
	Criteria     map[string]CriterionScore `json:"criteria"`
	Summary      string                    `json:"summary"`
}

// GradeWritten grades a free-text answer against the rubric. Unlike MCQ
// grading there is no sensible canned fallback, so model failures surface to
// the caller.
func (c *Client) GradeWritten(ctx context.Context, question, answer, context_ string, companyName, companySymbol string) (*WrittenFeedback, error) {
	prompt := buildWrittenPrompt(question, answer, context_, companyName, companySymbol)

	var feedback WrittenFeedback
	if err := c.generateJSON(ctx, prompt, &feedback); err != nil {
		return nil, fmt.Errorf("grade written answer: %w", err)
	}
	if feedback.OverallScore < 0 {
		feedback.OverallScore = 0
	}
	if feedback.OverallScore > 100 {
		feedback.OverallScore = 100
	}
	return &feedback, nil
}

func buildWrittenPrompt(question, answer, context_, companyName, companySymbol string) string {
	var b strings.Builder
	b.WriteString(gradingRubric)
	fmt.Fprintf(&b, "\n\nQUESTION:\n%s\n\nCONTEXT PROVIDED TO STUDENT:\n%s", question, context_)
	if companyName != "" && companySymbol != "" {
		fmt.Fprintf(&b, "\n\nEXPECTED COMPANY: The question is about %s (%s).\n", companyName, companySymbol)
		fmt.Fprintf(&b, "CRITICAL: If the student's answer references a different company or doesn't mention %s/%s, give overall_score = 0.", companyName, companySymbol)
	}
	fmt.Fprintf(&b, "\n\nSTUDENT'S ANSWER:\n%s\n\nGrade this answer according to the rubric above. Be strict but fair.", answer)
	return b.String()
}

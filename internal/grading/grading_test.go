package grading

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yourorg/vesto-server/internal/domain"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripFences(tc.in); got != tc.want {
				t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseWrittenFeedbackFromFencedResponse(t *testing.T) {
	raw := "```json\n" + `{
		"overall_score": 72,
		"criteria": {
			"clarity": {"score": 15, "feedback": "Well organized."},
			"evidence": {"score": 12, "feedback": "Cites some metrics."}
		},
		"summary": "A solid answer."
	}` + "\n```"

	var feedback WrittenFeedback
	if err := json.Unmarshal([]byte(stripFences(raw)), &feedback); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if feedback.OverallScore != 72 {
		t.Errorf("overall_score = %v, want 72", feedback.OverallScore)
	}
	if feedback.Criteria["clarity"].Score != 15 {
		t.Errorf("clarity score = %v, want 15", feedback.Criteria["clarity"].Score)
	}
	if feedback.Summary != "A solid answer." {
		t.Errorf("summary = %q", feedback.Summary)
	}
}

func TestFallbackMCQ(t *testing.T) {
	options := []MCQOption{
		{Label: "A", Text: "Diversification reduces unsystematic risk"},
		{Label: "B", Text: "Diversification guarantees returns"},
	}

	wrong := fallbackMCQ("B", "A", options)
	if wrong.IsCorrect {
		t.Error("wrong answer marked correct")
	}
	if wrong.WhyWrong == "" || wrong.HowToUnderstand == "" {
		t.Error("fallback for a wrong answer must include guidance")
	}
	if !strings.Contains(wrong.CorrectAnswerExplanation, "A") {
		t.Errorf("explanation does not name the correct option: %q", wrong.CorrectAnswerExplanation)
	}

	right := fallbackMCQ("A", "A", options)
	if !right.IsCorrect {
		t.Error("correct answer marked wrong")
	}
	if right.WhyWrong != "" {
		t.Error("correct answer should carry no whyWrong")
	}
}

func TestReviewFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.PitchStatus
	}{
		{0, domain.PitchRejected},
		{69.9, domain.PitchRejected},
		{70, domain.PitchApproved},
		{100, domain.PitchApproved},
		{250, domain.PitchApproved}, // clamped
		{-5, domain.PitchRejected},  // clamped
	}
	for _, tc := range cases {
		review := reviewFromScore(tc.score, "feedback")
		if review.Status != tc.want {
			t.Errorf("reviewFromScore(%v) status = %s, want %s", tc.score, review.Status, tc.want)
		}
		if review.Score < 0 || review.Score > 100 {
			t.Errorf("reviewFromScore(%v) score %v out of range", tc.score, review.Score)
		}
	}
}

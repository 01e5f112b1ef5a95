package grading

import (
	"context"
	"fmt"
	"strings"
)

type MCQOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type MCQFeedback struct {
	IsCorrect                bool   `json:"isCorrect"`
	Explanation              string `json:"explanation"`
	WhyWrong                 string `json:"whyWrong,omitempty"`
	HowToUnderstand          string `json:"howToUnderstand,omitempty"`
	CorrectAnswerExplanation string `json:"correctAnswerExplanation"`
}

// GradeMCQ returns feedback on a multiple-choice answer. Correctness is
// decided locally; the model only writes the explanations, and a canned
// fallback covers model failures so grading never blocks an answer.
func (c *Client) GradeMCQ(ctx context.Context, question, selected, correct string, options []MCQOption, extra string) *MCQFeedback {
	prompt := buildMCQPrompt(question, selected, correct, options, extra)

	var feedback MCQFeedback
	if err := c.generateJSON(ctx, prompt, &feedback); err != nil {
		c.logger.Warn("mcq grading fell back to canned feedback", "err", err)
		return fallbackMCQ(selected, correct, options)
	}
	// The model is never trusted on correctness.
	feedback.IsCorrect = selected == correct
	return &feedback
}

func buildMCQPrompt(question, selected, correct string, options []MCQOption, extra string) string {
	var optionLines, selectedText, correctText strings.Builder
	for _, opt := range options {
		fmt.Fprintf(&optionLines, "%s. %s\n", opt.Label, opt.Text)
		if opt.Label == selected {
			selectedText.WriteString(opt.Text)
		}
		if opt.Label == correct {
			correctText.WriteString(opt.Text)
		}
	}

	var b strings.Builder
	b.WriteString("You are an expert financial analyst providing feedback on a multiple-choice question.\n\n")
	fmt.Fprintf(&b, "QUESTION:\n%s\n\nOPTIONS:\n%s\n", question, optionLines.String())
	fmt.Fprintf(&b, "CORRECT ANSWER: %s - %s\n\n", correct, correctText.String())
	fmt.Fprintf(&b, "STUDENT'S SELECTED ANSWER: %s - %s\n\n", selected, selectedText.String())
	if extra != "" {
		fmt.Fprintf(&b, "CONTEXT: %s\n\n", extra)
	}
	b.WriteString(`Provide feedback as JSON:
{
  "isCorrect": <boolean>,
  "explanation": "why the correct answer is correct",
  "whyWrong": "if the student is wrong: the misconception behind their choice, else null",
  "howToUnderstand": "if the student is wrong: how to approach this concept, else null",
  "correctAnswerExplanation": "detailed explanation of the correct answer and the underlying concept"
}

Be educational and helpful. If the answer is correct, still provide a thorough explanation.`)
	return b.String()
}

func fallbackMCQ(selected, correct string, options []MCQOption) *MCQFeedback {
	correctText := "the one that best addresses the question"
	for _, opt := range options {
		if opt.Label == correct {
			correctText = opt.Text
		}
	}
	feedback := &MCQFeedback{
		IsCorrect:                selected == correct,
		Explanation:              correctText,
		CorrectAnswerExplanation: fmt.Sprintf("The correct answer is %s because %s.", correct, correctText),
	}
	if !feedback.IsCorrect {
		feedback.WhyWrong = fmt.Sprintf("The selected answer (%s) is not correct.", selected)
		feedback.HowToUnderstand = "Review the lesson material and consider the key concepts discussed."
	}
	return feedback
}

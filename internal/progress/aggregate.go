package progress

type QuestionKind string

const (
	QuestionMCQ     QuestionKind = "mcq"
	QuestionWritten QuestionKind = "written"
)

// QuestionResult is one question's graded outcome as known to the caller.
// Written questions carry a numeric score; multiple-choice carry correctness.
type QuestionResult struct {
	Kind     QuestionKind
	Answered bool
	Correct  bool
	Score    *float64
}

// Aggregate turns a module's per-question feedback into the counters fed to
// Record. The percentage is forced to exactly 100 when every question is
// answered so integer division never strands a finished module at 99.
func Aggregate(results []QuestionResult, totalQuestions int) RecordInput {
	in := RecordInput{TotalQuestions: totalQuestions}
	if totalQuestions <= 0 {
		return in
	}

	var answered int
	var scoreSum float64
	var scored int
	for _, r := range results {
		if !r.Answered {
			continue
		}
		answered++
		if r.Kind == QuestionMCQ && r.Correct {
			in.CorrectAnswers++
		}
		if r.Kind == QuestionWritten && r.Score != nil {
			scoreSum += *r.Score
			scored++
		}
	}

	if answered >= totalQuestions {
		in.CompletionPercentage = 100
	} else {
		in.CompletionPercentage = 100 * answered / totalQuestions
	}
	if scored > 0 {
		in.AverageScore = scoreSum / float64(scored)
	}
	return in
}

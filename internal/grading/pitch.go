package grading

import (
	"context"
	"fmt"

	"github.com/yourorg/vesto-server/internal/domain"
)

// approvalThreshold is the minimum pitch score that unlocks investing.
const approvalThreshold = 70

type PitchReview struct {
	Status   domain.PitchStatus `json:"status"`
	Score    float64            `json:"score"`
	Feedback string             `json:"feedback"`
}

type pitchResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ReviewPitch scores an investment thesis against the company context.
// Approval is derived from the score, never asserted by the model. A model
// failure rejects the pitch so the student can resubmit.
func (c *Client) ReviewPitch(ctx context.Context, companyName, symbol, pitchText, companyData string) *PitchReview {
	prompt := fmt.Sprintf(`You are an investment committee member reviewing a student's stock pitch.

COMPANY DATA:
%s

STUDENT'S PITCH FOR %s (%s):
%s

Score the pitch 0-100 on thesis quality: does it state a clear view, support it with the company data above, and weigh the risks?

Return JSON: {"score": <number 0-100>, "feedback": "<3-5 sentences: what works, what is missing, what to improve>"}`,
		companyData, companyName, symbol, pitchText)

	var resp pitchResponse
	if err := c.generateJSON(ctx, prompt, &resp); err != nil {
		c.logger.Warn("pitch review fell back to rejection", "err", err)
		return &PitchReview{
			Status:   domain.PitchRejected,
			Score:    0,
			Feedback: "The review service could not evaluate this pitch. Please submit it again.",
		}
	}
	return reviewFromScore(resp.Score, resp.Feedback)
}

func reviewFromScore(score float64, feedback string) *PitchReview {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	status := domain.PitchRejected
	if score >= approvalThreshold {
		status = domain.PitchApproved
	}
	return &PitchReview{Status: status, Score: score, Feedback: feedback}
}

package gateway

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestInvestRequestValidation(t *testing.T) {
	validate := validator.New()

	valid := investRequest{
		UserID:           "4b0aff6e-2f17-4a51-9d3b-6a2e52a81ab0",
		Symbol:           "AAPL",
		CompanyName:      "Apple Inc",
		Shares:           10,
		BuyPrice:         200,
		InvestmentAmount: 2000,
	}

	cases := []struct {
		name    string
		mutate  func(r *investRequest)
		wantErr bool
	}{
		{"valid", func(r *investRequest) {}, false},
		{"missing user id", func(r *investRequest) { r.UserID = "" }, true},
		{"malformed user id", func(r *investRequest) { r.UserID = "not-a-uuid" }, true},
		{"missing symbol", func(r *investRequest) { r.Symbol = "" }, true},
		{"zero shares", func(r *investRequest) { r.Shares = 0 }, true},
		{"negative buy price", func(r *investRequest) { r.BuyPrice = -5 }, true},
		{"zero amount", func(r *investRequest) { r.InvestmentAmount = 0 }, true},
		{"company name optional", func(r *investRequest) { r.CompanyName = "" }, false},
		{"malformed pitch id", func(r *investRequest) {
			bad := "nope"
			r.PitchSubmissionID = &bad
		}, true},
		{"valid pitch id", func(r *investRequest) {
			id := "a4c4f3d2-8c1b-4f62-9a57-02f1d7f3b9aa"
			r.PitchSubmissionID = &id
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := validate.Struct(req)
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got none")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoginRequestValidation(t *testing.T) {
	validate := validator.New()

	cases := []struct {
		name    string
		req     loginRequest
		wantErr bool
	}{
		{"valid", loginRequest{Email: "a@b.co", Password: "secretpw"}, false},
		// Login must accept any existing password; length rules apply only
		// at registration.
		{"short password", loginRequest{Email: "a@b.co", Password: "pw"}, false},
		{"missing email", loginRequest{Password: "secretpw"}, true},
		{"malformed email", loginRequest{Email: "not-an-email", Password: "secretpw"}, true},
		{"missing password", loginRequest{Email: "a@b.co"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.req)
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got none")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGradeMCQRequestValidation(t *testing.T) {
	validate := validator.New()

	req := gradeMCQRequest{
		Question:       "What does diversification reduce?",
		SelectedAnswer: "A",
		CorrectAnswer:  "A",
	}
	if err := validate.Struct(req); err == nil {
		t.Error("expected error for fewer than two options")
	}
}

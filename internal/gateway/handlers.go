package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/vesto-server/internal/auth"
	"github.com/yourorg/vesto-server/internal/domain"
	"github.com/yourorg/vesto-server/internal/grading"
	"github.com/yourorg/vesto-server/internal/ledger"
	"github.com/yourorg/vesto-server/internal/progress"
	pgRepo "github.com/yourorg/vesto-server/internal/repository/postgres"
	redisRepo "github.com/yourorg/vesto-server/internal/repository/redis"
)

// Grader is the text-in, structured-feedback-out surface the gateway needs
// from the AI service.
type Grader interface {
	GradeMCQ(ctx context.Context, question, selected, correct string, options []grading.MCQOption, extra string) *grading.MCQFeedback
	GradeWritten(ctx context.Context, question, answer, context_, companyName, companySymbol string) (*grading.WrittenFeedback, error)
	ReviewPitch(ctx context.Context, companyName, symbol, pitchText, companyData string) *grading.PitchReview
}

type Handlers struct {
	users     *pgRepo.UserRepo
	accounts  *pgRepo.AccountRepo
	pitches   *pgRepo.PitchRepo
	companies *pgRepo.CompanyRepo
	quotes    *redisRepo.QuoteRepo
	ledger    *ledger.Service
	progress  *progress.Service
	grader    Grader
	jwtSvc    *auth.JWTService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandlers(
	users *pgRepo.UserRepo,
	accounts *pgRepo.AccountRepo,
	pitches *pgRepo.PitchRepo,
	companies *pgRepo.CompanyRepo,
	quotes *redisRepo.QuoteRepo,
	ledgerSvc *ledger.Service,
	progressSvc *progress.Service,
	grader Grader,
	jwtSvc *auth.JWTService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		users:     users,
		accounts:  accounts,
		pitches:   pitches,
		companies: companies,
		quotes:    quotes,
		ledger:    ledgerSvc,
		progress:  progressSvc,
		grader:    grader,
		jwtSvc:    jwtSvc,
		validate:  validator.New(),
		logger:    logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, err.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed", "internal error")
		return
	}
	user := &domain.User{Email: req.Email, PasswordHash: string(hash)}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, http.StatusConflict, "Registration failed", "email already registered")
		return
	}
	if err := h.accounts.Create(r.Context(), user.ID, ledger.DefaultStartingCash); err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed", err.Error())
		return
	}
	token, err := h.jwtSvc.Sign(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed", "failed to sign token")
		return
	}
	writeData(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, err.Error())
		return
	}
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, categoryUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, categoryUnauthorized, "invalid credentials")
		return
	}
	token, err := h.jwtSvc.Sign(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed", "failed to sign token")
		return
	}
	writeData(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handlers) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	view, err := h.ledger.Portfolio(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch portfolio", err.Error())
		return
	}
	writeData(w, http.StatusOK, view)
}

type investRequest struct {
	UserID            string  `json:"userId"            validate:"required,uuid"`
	Symbol            string  `json:"symbol"            validate:"required"`
	CompanyName       string  `json:"companyName"`
	Shares            float64 `json:"shares"            validate:"required,gt=0"`
	BuyPrice          float64 `json:"buyPrice"          validate:"required,gt=0"`
	InvestmentAmount  float64 `json:"investmentAmount"  validate:"required,gt=0"`
	PitchSubmissionID *string `json:"pitchSubmissionId" validate:"omitempty,uuid"`
}

func (h *Handlers) Invest(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromCtx(r.Context())

	var req investRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "Missing required fields")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid userId")
		return
	}
	order := ledger.BuyOrder{
		UserID:           userID,
		Symbol:           req.Symbol,
		CompanyName:      req.CompanyName,
		Shares:           req.Shares,
		BuyPrice:         req.BuyPrice,
		InvestmentAmount: req.InvestmentAmount,
	}
	if req.PitchSubmissionID != nil {
		pitchID, err := uuid.Parse(*req.PitchSubmissionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid pitchSubmissionId")
			return
		}
		order.PitchSubmissionID = &pitchID
	}

	holding, err := h.ledger.Invest(r.Context(), callerID, order)
	if err != nil {
		h.writeInvestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    holding,
		"message": fmt.Sprintf("Successfully invested $%.2f in %s", req.InvestmentAmount, req.Symbol),
	})
}

func (h *Handlers) writeInvestError(w http.ResponseWriter, err error) {
	var validationErr *ledger.ValidationError
	var fundsErr *ledger.InsufficientFundsError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, validationErr.Error())
	case errors.As(err, &fundsErr):
		writeError(w, http.StatusBadRequest, categoryInsufficientFunds, fundsErr.Detail())
	case errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, categoryForbidden, "User ID mismatch")
	default:
		h.logger.Error("invest failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to invest", err.Error())
	}
}

type pitchRequest struct {
	UserID      string `json:"userId"      validate:"required,uuid"`
	Symbol      string `json:"symbol"      validate:"required"`
	CompanyName string `json:"companyName"`
	PitchText   string `json:"pitchText"   validate:"required"`
}

func (h *Handlers) SubmitPitch(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromCtx(r.Context())

	var req pitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "Missing required fields")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil || userID != callerID {
		writeError(w, http.StatusForbidden, categoryForbidden, "User ID mismatch")
		return
	}

	companyData, companyID := h.loadCompanyContext(r.Context(), req.Symbol, req.CompanyName)
	review := h.grader.ReviewPitch(r.Context(), req.CompanyName, req.Symbol, req.PitchText, companyData)

	submission := &domain.PitchSubmission{
		UserID:      userID,
		CompanyID:   companyID,
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		PitchText:   req.PitchText,
		Status:      review.Status,
		AIFeedback:  review.Feedback,
		AIScore:     review.Score,
	}
	if err := h.pitches.Create(r.Context(), submission); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process pitch", err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]any{"submission": submission, "review": review})
}

func (h *Handlers) ListPitches(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	pitches, err := h.pitches.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch pitches", err.Error())
		return
	}
	if pitches == nil {
		pitches = []domain.PitchSubmission{}
	}
	writeData(w, http.StatusOK, pitches)
}

func (h *Handlers) GetPitch(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid pitch id")
		return
	}
	pitch, err := h.pitches.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found", "pitch submission not found")
		return
	}
	// Pitches are private to their author.
	if pitch.UserID != userID {
		writeError(w, http.StatusNotFound, "Not found", "pitch submission not found")
		return
	}
	writeData(w, http.StatusOK, pitch)
}

// loadCompanyContext assembles the grading context from the snapshot. The
// lookups are independent and optional; a pitch on an unknown symbol is
// still reviewed, just with less context.
func (h *Handlers) loadCompanyContext(ctx context.Context, symbol, companyName string) (string, *uuid.UUID) {
	var company *domain.Company
	var fundamentals *domain.CompanyFundamentals
	var mock10k *domain.Mock10K

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		company, _ = h.companies.GetBySymbol(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		fundamentals, _ = h.companies.GetFundamentals(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		mock10k, _ = h.companies.GetMock10K(gctx, symbol)
		return nil
	})
	g.Wait()

	business, risks := "N/A", "N/A"
	if mock10k != nil {
		business, risks = mock10k.BusinessDescription, mock10k.RiskFactors
	}
	metrics := "N/A"
	if fundamentals != nil {
		metrics = fmt.Sprintf("P/E %.2f, ROE %.2f%%, Debt/Equity %.2f",
			fundamentals.PERatio, fundamentals.ROE, fundamentals.DebtToEquity)
	}
	data := fmt.Sprintf("Company: %s (%s)\nBusiness: %s\nRisk Factors: %s\nKey Metrics: %s",
		companyName, symbol, business, risks, metrics)

	var companyID *uuid.UUID
	if company != nil {
		companyID = &company.ID
	}
	return data, companyID
}

func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	rows, err := h.progress.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch progress", err.Error())
		return
	}
	writeData(w, http.StatusOK, rows)
}

// progressRequest fields are optional and default to zero. The caller never
// asserts a status: it is derived from the percentage.
type progressRequest struct {
	CompletionPercentage int     `json:"completionPercentage"`
	TotalQuestions       int     `json:"totalQuestions"`
	CorrectAnswers       int     `json:"correctAnswers"`
	AverageScore         float64 `json:"averageScore"`
}

func (h *Handlers) RecordProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	moduleID := chi.URLParam(r, "moduleId")

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}

	row, err := h.progress.Record(r.Context(), userID, moduleID, progress.RecordInput{
		CompletionPercentage: req.CompletionPercentage,
		TotalQuestions:       req.TotalQuestions,
		CorrectAnswers:       req.CorrectAnswers,
		AverageScore:         req.AverageScore,
	})
	if err != nil {
		if errors.Is(err, progress.ErrInvalid) {
			writeError(w, http.StatusBadRequest, categoryInvalidRequest, err.Error())
			return
		}
		h.logger.Error("record progress failed", "err", err, "module", moduleID)
		writeError(w, http.StatusInternalServerError, "Failed to save progress", err.Error())
		return
	}
	writeData(w, http.StatusOK, row)
}

type gradeMCQRequest struct {
	Question       string              `json:"question"       validate:"required"`
	SelectedAnswer string              `json:"selectedAnswer" validate:"required"`
	CorrectAnswer  string              `json:"correctAnswer"  validate:"required"`
	Options        []grading.MCQOption `json:"options"        validate:"required,min=2"`
	Context        string              `json:"context"`
}

func (h *Handlers) GradeMCQ(w http.ResponseWriter, r *http.Request) {
	var req gradeMCQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "Missing required fields")
		return
	}
	feedback := h.grader.GradeMCQ(r.Context(), req.Question, req.SelectedAnswer, req.CorrectAnswer, req.Options, req.Context)
	writeData(w, http.StatusOK, feedback)
}

type gradeWrittenRequest struct {
	Question      string `json:"question" validate:"required"`
	Answer        string `json:"answer"   validate:"required"`
	Context       string `json:"context"`
	CompanyName   string `json:"companyName"`
	CompanySymbol string `json:"companySymbol"`
}

func (h *Handlers) GradeWritten(w http.ResponseWriter, r *http.Request) {
	var req gradeWrittenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, categoryInvalidRequest, "Missing required fields")
		return
	}
	feedback, err := h.grader.GradeWritten(r.Context(), req.Question, req.Answer, req.Context, req.CompanyName, req.CompanySymbol)
	if err != nil {
		h.logger.Error("written grading failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to grade answer", err.Error())
		return
	}
	writeData(w, http.StatusOK, feedback)
}

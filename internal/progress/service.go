package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/vesto-server/internal/domain"
)

// ErrInvalid marks client-fixable problems with a progress update.
var ErrInvalid = errors.New("invalid progress input")

// Store persists per-user, per-module progress rows. Upsert must resolve
// concurrent writes for the same (user, module) key to a single row.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID, moduleID string) (*domain.ModuleProgress, error)
	Upsert(ctx context.Context, p *domain.ModuleProgress) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ModuleProgress, error)
}

// RecordInput carries the aggregate counters for one module, computed by the
// caller from all answered-question feedback it knows about. Missing fields
// default to zero.
type RecordInput struct {
	CompletionPercentage int
	TotalQuestions       int
	CorrectAnswers       int
	AverageScore         float64
}

// Service maintains a monotonic, idempotent record of a user's advancement
// through a module.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// StatusFor derives the module status from the completion percentage, which
// is the single source of truth: callers never assert status directly.
func StatusFor(completionPercentage int) domain.ProgressStatus {
	switch {
	case completionPercentage <= 0:
		return domain.ProgressNotStarted
	case completionPercentage >= 100:
		return domain.ProgressCompleted
	default:
		return domain.ProgressInProgress
	}
}

// Record upserts the progress row for (userID, moduleID). started_at is set
// the first time the module is written as in_progress; completed_at the first
// time the percentage reaches 100. Both are preserved on every later write. A
// module recorded straight at 100 never gets a started_at.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, moduleID string, in RecordInput) (*domain.ModuleProgress, error) {
	if moduleID == "" {
		return nil, fmt.Errorf("%w: module id is required", ErrInvalid)
	}
	if in.CompletionPercentage < 0 || in.CompletionPercentage > 100 {
		return nil, fmt.Errorf("%w: completion percentage must be between 0 and 100", ErrInvalid)
	}
	if in.TotalQuestions < 0 || in.CorrectAnswers < 0 {
		return nil, fmt.Errorf("%w: counters must not be negative", ErrInvalid)
	}

	existing, err := s.store.Get(ctx, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	now := s.now().UTC()
	status := StatusFor(in.CompletionPercentage)

	row := domain.ModuleProgress{
		UserID:               userID,
		ModuleID:             moduleID,
		CompletionPercentage: in.CompletionPercentage,
		Status:               status,
		TotalQuestions:       in.TotalQuestions,
		CorrectAnswers:       in.CorrectAnswers,
		AverageScore:         in.AverageScore,
		LastAccessedAt:       now,
		UpdatedAt:            now,
	}
	if existing != nil {
		row.ID = existing.ID
		row.StartedAt = existing.StartedAt
		row.CompletedAt = existing.CompletedAt
	}
	if row.StartedAt == nil && status == domain.ProgressInProgress {
		startedAt := now
		row.StartedAt = &startedAt
	}
	if row.CompletedAt == nil && in.CompletionPercentage == 100 {
		completedAt := now
		row.CompletedAt = &completedAt
	}

	if err := s.store.Upsert(ctx, &row); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	return &row, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.ModuleProgress, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if rows == nil {
		rows = []domain.ModuleProgress{}
	}
	return rows, nil
}

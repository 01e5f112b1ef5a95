package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/vesto-server/internal/domain"
)

type fakeStore struct {
	rows map[string]domain.ModuleProgress
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]domain.ModuleProgress)}
}

func key(userID uuid.UUID, moduleID string) string {
	return userID.String() + "/" + moduleID
}

func (s *fakeStore) Get(_ context.Context, userID uuid.UUID, moduleID string) (*domain.ModuleProgress, error) {
	row, ok := s.rows[key(userID, moduleID)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *fakeStore) Upsert(_ context.Context, p *domain.ModuleProgress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.rows[key(p.UserID, p.ModuleID)] = *p
	return nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ModuleProgress, error) {
	var out []domain.ModuleProgress
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

// newTestService returns a service with a controllable clock that advances
// one minute per call.
func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewService(store)
	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	var calls int
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return svc, store
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		pct  int
		want domain.ProgressStatus
	}{
		{0, domain.ProgressNotStarted},
		{1, domain.ProgressInProgress},
		{60, domain.ProgressInProgress},
		{99, domain.ProgressInProgress},
		{100, domain.ProgressCompleted},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.pct); got != tc.want {
			t.Errorf("StatusFor(%d) = %s, want %s", tc.pct, got, tc.want)
		}
	}
}

func TestRecordFirstAnswerStartsModule(t *testing.T) {
	// 3 of 5 answered, 2 correct MCQ, one written scored 80.
	svc, _ := newTestService(t)
	userID := uuid.New()

	row, err := svc.Record(context.Background(), userID, "intro-to-investing", RecordInput{
		CompletionPercentage: 60,
		TotalQuestions:       5,
		CorrectAnswers:       2,
		AverageScore:         80,
	})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if row.Status != domain.ProgressInProgress {
		t.Errorf("status = %s, want in_progress", row.Status)
	}
	if row.StartedAt == nil {
		t.Fatal("started_at not set on first in_progress write")
	}
	if row.CompletedAt != nil {
		t.Error("completed_at set before completion")
	}
	if row.AverageScore != 80 || row.CorrectAnswers != 2 || row.TotalQuestions != 5 {
		t.Errorf("counters not persisted: %+v", row)
	}
}

func TestRecordCompletionSetsCompletedOnce(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Record(ctx, userID, "m1", RecordInput{CompletionPercentage: 60, TotalQuestions: 5})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	done, err := svc.Record(ctx, userID, "m1", RecordInput{CompletionPercentage: 100, TotalQuestions: 5, CorrectAnswers: 4, AverageScore: 85})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if done.Status != domain.ProgressCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("completed_at not set at 100%")
	}
	if done.StartedAt == nil || !done.StartedAt.Equal(*first.StartedAt) {
		t.Error("started_at was not preserved across writes")
	}

	// A later identical call must leave the milestone untouched.
	again, err := svc.Record(ctx, userID, "m1", RecordInput{CompletionPercentage: 100, TotalQuestions: 5, CorrectAnswers: 4, AverageScore: 85})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if !again.CompletedAt.Equal(*done.CompletedAt) {
		t.Errorf("completed_at changed on repeat write: %v -> %v", done.CompletedAt, again.CompletedAt)
	}
}

func TestRecordDirectCompletionLeavesStartedUnset(t *testing.T) {
	// First write for the key already reports 100: the module was never
	// in_progress, so only completed_at is stamped.
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	row, err := svc.Record(ctx, userID, "m5", RecordInput{CompletionPercentage: 100, TotalQuestions: 3, CorrectAnswers: 3})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if row.Status != domain.ProgressCompleted {
		t.Errorf("status = %s, want completed", row.Status)
	}
	if row.StartedAt != nil {
		t.Errorf("started_at = %v, want nil for a direct jump to completed", row.StartedAt)
	}
	if row.CompletedAt == nil {
		t.Fatal("completed_at not set at 100%")
	}

	// A later repeat write must not backfill it either.
	again, err := svc.Record(ctx, userID, "m5", RecordInput{CompletionPercentage: 100, TotalQuestions: 3, CorrectAnswers: 3})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if again.StartedAt != nil {
		t.Error("started_at backfilled on repeat completed write")
	}
}

func TestRecordIdempotentExceptAccessTimes(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()
	in := RecordInput{CompletionPercentage: 40, TotalQuestions: 5, CorrectAnswers: 1, AverageScore: 72}

	a, err := svc.Record(ctx, userID, "m2", in)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	b, err := svc.Record(ctx, userID, "m2", in)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if a.ID != b.ID {
		t.Error("repeat write created a second row")
	}
	if b.CompletionPercentage != a.CompletionPercentage || b.Status != a.Status ||
		b.TotalQuestions != a.TotalQuestions || b.CorrectAnswers != a.CorrectAnswers ||
		b.AverageScore != a.AverageScore {
		t.Errorf("payload changed across identical writes: %+v vs %+v", a, b)
	}
	if !b.StartedAt.Equal(*a.StartedAt) {
		t.Error("started_at changed across identical writes")
	}
	if !b.LastAccessedAt.After(a.LastAccessedAt) {
		t.Error("last_accessed_at did not advance")
	}
}

func TestRecordMilestonesSurviveRegression(t *testing.T) {
	// Completed once, then the caller reports a lower percentage (e.g. a new
	// question added to the module). completed_at must not move or clear.
	svc, _ := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	done, err := svc.Record(ctx, userID, "m3", RecordInput{CompletionPercentage: 100, TotalQuestions: 4})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	later, err := svc.Record(ctx, userID, "m3", RecordInput{CompletionPercentage: 80, TotalQuestions: 5})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if later.Status != domain.ProgressInProgress {
		t.Errorf("status = %s, want in_progress", later.Status)
	}
	if later.CompletedAt == nil || !later.CompletedAt.Equal(*done.CompletedAt) {
		t.Error("completed_at was not preserved after regression")
	}
}

func TestRecordZeroPercentStaysNotStarted(t *testing.T) {
	svc, _ := newTestService(t)
	row, err := svc.Record(context.Background(), uuid.New(), "m4", RecordInput{CompletionPercentage: 0, TotalQuestions: 5})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if row.Status != domain.ProgressNotStarted {
		t.Errorf("status = %s, want not_started", row.Status)
	}
	if row.StartedAt != nil {
		t.Error("started_at set for a not_started module")
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		moduleID string
		in       RecordInput
	}{
		{"empty module", "", RecordInput{CompletionPercentage: 10}},
		{"negative percentage", "m", RecordInput{CompletionPercentage: -1}},
		{"percentage over 100", "m", RecordInput{CompletionPercentage: 101}},
		{"negative counters", "m", RecordInput{CompletionPercentage: 10, TotalQuestions: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, uuid.New(), tc.moduleID, tc.in)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

package redemption

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
)

type mockRepo struct {
	mu       sync.Mutex
	store    map[uuid.UUID]*Redemption
	failNext error
}

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*Redemption)} }

func (m *mockRepo) Create(_ context.Context, r *Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	r.ID = uuid.New()
	m.store[r.ID] = r
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("redemption", id.String())
	}
	cp := *r
	return &cp, nil
}
func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Redemption, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*Redemption
	for _, rd := range m.store {
		if rd.PatientID == patientID {
			r = append(r, rd)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) ListByStatus(_ context.Context, status Status, limit, offset int) ([]*Redemption, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*Redemption
	for _, rd := range m.store {
		if rd.Status == status {
			r = append(r, rd)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*Redemption
	for _, rd := range m.store {
		if !rd.RedeemedAt.Before(from) && rd.RedeemedAt.Before(to) {
			r = append(r, rd)
		}
	}
	return r, nil
}
func (m *mockRepo) ListByPointsRange(_ context.Context, min, max int) ([]*Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var r []*Redemption
	for _, rd := range m.store {
		if rd.PointsSpent >= min && rd.PointsSpent <= max {
			r = append(r, rd)
		}
	}
	return r, nil
}
func (m *mockRepo) Update(_ context.Context, r *Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[r.ID]; !ok {
		return clinicerr.NotFound("redemption", r.ID.String())
	}
	cp := *r
	m.store[r.ID] = &cp
	return nil
}
func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return clinicerr.NotFound("redemption", id.String())
	}
	delete(m.store, id)
	return nil
}

// mockLedger serializes each Debit the way the versioned balance write
// does in production: the sufficiency check and the write happen under
// one lock, so a losing racer sees the post-debit balance.
type mockLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
}

func newMockLedger() *mockLedger { return &mockLedger{balances: make(map[uuid.UUID]int)} }

func (m *mockLedger) Balance(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return 0, clinicerr.NotFound("patient", id.String())
	}
	return b, nil
}

func (m *mockLedger) Debit(_ context.Context, id uuid.UUID, amount int, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return clinicerr.NotFound("patient", id.String())
	}
	if b < amount {
		return clinicerr.InsufficientBalance(amount, b)
	}
	m.balances[id] = b - amount
	return nil
}

type stubRewards struct{ ids map[uuid.UUID]bool }

func (s stubRewards) Exists(_ context.Context, id uuid.UUID) (bool, error) { return s.ids[id], nil }

// snapshotTx imitates transactional rollback for the mocks: units of work
// run serialized, and on error the ledger is restored to its pre-call
// state.
func snapshotTx(ledger *mockLedger) TxRunner {
	var txMu sync.Mutex
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		txMu.Lock()
		defer txMu.Unlock()

		ledger.mu.Lock()
		snap := make(map[uuid.UUID]int, len(ledger.balances))
		for k, v := range ledger.balances {
			snap[k] = v
		}
		ledger.mu.Unlock()

		if err := fn(ctx); err != nil {
			ledger.mu.Lock()
			ledger.balances = snap
			ledger.mu.Unlock()
			return err
		}
		return nil
	}
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	ledger    *mockLedger
	patientID uuid.UUID
	rewardID  uuid.UUID
}

func newFixture(balance int) *fixture {
	repo := newMockRepo()
	ledger := newMockLedger()
	patientID, rewardID := uuid.New(), uuid.New()
	ledger.balances[patientID] = balance
	svc := NewService(repo, ledger, stubRewards{ids: map[uuid.UUID]bool{rewardID: true}}, snapshotTx(ledger))
	return &fixture{svc: svc, repo: repo, ledger: ledger, patientID: patientID, rewardID: rewardID}
}

func (f *fixture) input(points int) CreateInput {
	return CreateInput{
		PatientID:   f.patientID,
		RewardID:    f.rewardID,
		PointsSpent: points,
		RedeemedAt:  "2026-02-10",
		Status:      "pending",
	}
}

func TestCreate_DebitsAndRecords(t *testing.T) {
	f := newFixture(500)
	rd, err := f.svc.Create(context.Background(), f.input(300))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got, _ := f.ledger.Balance(context.Background(), f.patientID); got != 200 {
		t.Errorf("balance = %d, want 200", got)
	}
	if rd.Status != StatusPending || rd.PointsSpent != 300 {
		t.Errorf("record = %+v", rd)
	}
	if len(f.repo.store) != 1 {
		t.Errorf("records = %d, want 1", len(f.repo.store))
	}
}

func TestCreate_InsufficientBalance(t *testing.T) {
	f := newFixture(200)
	_, err := f.svc.Create(context.Background(), f.input(300))
	var insErr *clinicerr.InsufficientBalanceError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if got, _ := f.ledger.Balance(context.Background(), f.patientID); got != 200 {
		t.Errorf("balance moved on a rejected redemption: %d", got)
	}
	if len(f.repo.store) != 0 {
		t.Error("no record should be created on a rejected redemption")
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	f := newFixture(500)
	in := f.input(100)
	in.PatientID = uuid.New()
	if _, err := f.svc.Create(context.Background(), in); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreate_UnknownReward(t *testing.T) {
	f := newFixture(500)
	in := f.input(100)
	in.RewardID = uuid.New()
	if _, err := f.svc.Create(context.Background(), in); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreate_InvalidInputs(t *testing.T) {
	f := newFixture(500)
	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"zero points", func(in *CreateInput) { in.PointsSpent = 0 }},
		{"negative points", func(in *CreateInput) { in.PointsSpent = -50 }},
		{"bad date", func(in *CreateInput) { in.RedeemedAt = "10-02-2026" }},
		{"unknown status", func(in *CreateInput) { in.Status = "shipped" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input(100)
			tc.mutate(&in)
			if _, err := f.svc.Create(context.Background(), in); !clinicerr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if got, _ := f.ledger.Balance(context.Background(), f.patientID); got != 500 {
		t.Errorf("balance moved on rejected inputs: %d", got)
	}
}

func TestCreate_FailedInsertRollsBackDebit(t *testing.T) {
	f := newFixture(500)
	f.repo.failNext = errors.New("insert failed")
	if _, err := f.svc.Create(context.Background(), f.input(300)); err == nil {
		t.Fatal("expected error")
	}
	if got, _ := f.ledger.Balance(context.Background(), f.patientID); got != 500 {
		t.Errorf("debit not rolled back with the record: balance = %d", got)
	}
}

// Two redemptions race for a balance that covers each alone but not both.
// Exactly one wins; the balance never goes negative.
func TestCreate_ConcurrentRedemptionsSpendOnce(t *testing.T) {
	f := newFixture(500)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.input(300))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		failures++
		var insErr *clinicerr.InsufficientBalanceError
		if !errors.As(err, &insErr) && !clinicerr.IsConflict(err) {
			t.Errorf("loser got unexpected error: %v", err)
		}
	}
	if successes != 1 || failures != 1 {
		t.Errorf("successes = %d, failures = %d; want 1 and 1", successes, failures)
	}
	if got, _ := f.ledger.Balance(context.Background(), f.patientID); got != 200 {
		t.Errorf("balance = %d, want 200", got)
	}
}

func TestUpdate_StatusAndDateOnly(t *testing.T) {
	f := newFixture(500)
	rd, err := f.svc.Create(context.Background(), f.input(300))
	if err != nil {
		t.Fatal(err)
	}
	status, day := "Entregado", "2026-02-15"
	got, err := f.svc.Update(context.Background(), rd.ID, UpdateInput{Status: &status, RedeemedAt: &day})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != StatusDelivered {
		t.Errorf("status = %q, want delivered", got.Status)
	}
	if got.PointsSpent != 300 {
		t.Errorf("points spent changed on update: %d", got.PointsSpent)
	}
	if balance, _ := f.ledger.Balance(context.Background(), f.patientID); balance != 200 {
		t.Errorf("update touched the ledger: balance = %d", balance)
	}
}

func TestUpdate_RepointsReferencesWithoutLedgerMove(t *testing.T) {
	f := newFixture(500)
	rd, err := f.svc.Create(context.Background(), f.input(300))
	if err != nil {
		t.Fatal(err)
	}
	other := uuid.New()
	f.ledger.balances[other] = 50

	got, err := f.svc.Update(context.Background(), rd.ID, UpdateInput{PatientID: &other})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PatientID != other {
		t.Errorf("patient = %s, want %s", got.PatientID, other)
	}
	if balance, _ := f.ledger.Balance(context.Background(), other); balance != 50 {
		t.Errorf("repointing debited the new patient: balance = %d", balance)
	}
	if balance, _ := f.ledger.Balance(context.Background(), f.patientID); balance != 200 {
		t.Errorf("repointing credited the old patient: balance = %d", balance)
	}
}

func TestUpdate_RejectsUnknownReferences(t *testing.T) {
	f := newFixture(500)
	rd, err := f.svc.Create(context.Background(), f.input(300))
	if err != nil {
		t.Fatal(err)
	}
	unknown := uuid.New()
	if _, err := f.svc.Update(context.Background(), rd.ID, UpdateInput{PatientID: &unknown}); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found for unknown patient, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), rd.ID, UpdateInput{RewardID: &unknown}); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found for unknown reward, got %v", err)
	}
	if got, _ := f.svc.Get(context.Background(), rd.ID); got.PatientID != f.patientID || got.RewardID != f.rewardID {
		t.Errorf("failed update changed the record: %+v", got)
	}
}

func TestDelete_KeepsDebit(t *testing.T) {
	f := newFixture(500)
	rd, err := f.svc.Create(context.Background(), f.input(300))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(context.Background(), rd.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), rd.ID); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if balance, _ := f.ledger.Balance(context.Background(), f.patientID); balance != 200 {
		t.Errorf("delete credited the points back: balance = %d", balance)
	}
}

func TestDelete_UnknownRedemption(t *testing.T) {
	f := newFixture(500)
	if err := f.svc.Delete(context.Background(), uuid.New()); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListByPatient_UnknownPatient(t *testing.T) {
	f := newFixture(500)
	if _, _, err := f.svc.ListByPatient(context.Background(), uuid.New(), 20, 0); !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRangeQueries_BoundValidation(t *testing.T) {
	f := newFixture(500)
	if _, err := f.svc.ListByPointsRange(context.Background(), 10, 5); !clinicerr.IsValidation(err) {
		t.Errorf("reversed points range: expected validation error, got %v", err)
	}
	if _, err := f.svc.ListByDateRange(context.Background(), "2026-03-01", "2026-03-01"); !clinicerr.IsValidation(err) {
		t.Errorf("equal date bounds: expected validation error, got %v", err)
	}
}

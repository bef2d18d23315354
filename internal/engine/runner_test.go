package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs all four engine interfaces in memory, with the same CAS
// claim semantics as the Postgres store.
type fakeStore struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*domain.Schedule
	tickets   []domain.Ticket
	recipes   map[uuid.UUID]*domain.Recipe
	baskets   map[uuid.UUID]*domain.Basket

	leaseTTL  time.Duration
	listErr   error
	insertErr error
	recordErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules: make(map[uuid.UUID]*domain.Schedule),
		recipes:   make(map[uuid.UUID]*domain.Recipe),
		baskets:   make(map[uuid.UUID]*domain.Basket),
		leaseTTL:  5 * time.Minute,
	}
}

func (f *fakeStore) ListDue(_ context.Context, now time.Time) ([]domain.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var due []domain.Schedule
	for _, s := range f.schedules {
		if s.Enabled && !s.NextTriggerAt.After(now) {
			due = append(due, *s)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextTriggerAt.Equal(due[j].NextTriggerAt) {
			return due[i].NextTriggerAt.Before(due[j].NextTriggerAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	return due, nil
}

func (f *fakeStore) Claim(_ context.Context, id uuid.UUID, expected time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[id]
	if !ok || !s.Enabled || !s.NextTriggerAt.Equal(expected) {
		return false, nil
	}
	if s.ClaimedUntil != nil && s.ClaimedUntil.After(time.Now()) {
		return false, nil
	}
	until := time.Now().Add(f.leaseTTL)
	s.ClaimedUntil = &until
	return true, nil
}

func (f *fakeStore) RecordRun(_ context.Context, id uuid.UUID, status domain.RunStatus, ticketID *uuid.UUID, triggeredAt, nextTriggerAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	s := f.schedules[id]
	s.LastTriggeredAt = &triggeredAt
	s.LastRunStatus = &status
	if ticketID != nil {
		s.LastTicketID = ticketID
	}
	s.RunCount++
	s.NextTriggerAt = nextTriggerAt
	s.ClaimedUntil = nil
	return nil
}

func (f *fakeStore) MaxCycle(_ context.Context, scheduleID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, t := range f.tickets {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID && t.Mode == domain.ModeContinuous && t.CycleNumber > max {
			max = t.CycleNumber
		}
	}
	return max, nil
}

func (f *fakeStore) Insert(_ context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.tickets = append(f.tickets, *t)
	return nil
}

func (f *fakeStore) RecipeByID(_ context.Context, id uuid.UUID) (*domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: recipe %s", ErrDependencyNotFound, id)
	}
	return r, nil
}

func (f *fakeStore) BasketByID(_ context.Context, id uuid.UUID) (*domain.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.baskets[id]
	if !ok {
		return nil, fmt.Errorf("%w: basket %s", ErrDependencyNotFound, id)
	}
	return b, nil
}

func (f *fakeStore) ticketsFor(scheduleID uuid.UUID) []domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []domain.Ticket
	for _, t := range f.tickets {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID {
			res = append(res, t)
		}
	}
	return res
}

// seedSchedule wires a schedule plus its recipe and basket into the store
// and returns it, due at the given instant.
func seedSchedule(f *fakeStore, dueAt time.Time) *domain.Schedule {
	recipe := &domain.Recipe{ID: uuid.New(), AgentType: "research"}
	basket := &domain.Basket{ID: uuid.New(), WorkspaceID: uuid.New()}
	f.recipes[recipe.ID] = recipe
	f.baskets[basket.ID] = basket

	s := &domain.Schedule{
		ID:            uuid.New(),
		ProjectID:     uuid.New(),
		BasketID:      basket.ID,
		RecipeID:      recipe.ID,
		Frequency:     domain.FrequencyWeekly,
		DayOfWeek:     1,
		Hour:          9,
		Params:        []byte(`{"depth":"full"}`),
		Enabled:       true,
		NextTriggerAt: dueAt,
	}
	f.schedules[s.ID] = s
	return s
}

func runnerFor(f *fakeStore, now time.Time) *BatchRunner {
	return NewBatchRunner(f, f, f, f).WithClock(func() time.Time { return now })
}

func TestRunOnceCreatesTicketAndAdvances(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)
	assert.Equal(t, 1, report.Results[0].CycleNumber)

	tickets := f.ticketsFor(s.ID)
	require.Len(t, tickets, 1)
	ticket := tickets[0]
	assert.Equal(t, domain.ModeContinuous, ticket.Mode)
	assert.Equal(t, 1, ticket.CycleNumber)
	assert.Equal(t, s.BasketID, ticket.BasketID)
	assert.Equal(t, f.baskets[s.BasketID].WorkspaceID, ticket.WorkspaceID)
	assert.JSONEq(t, `{"depth":"full"}`, string(ticket.Params))

	got := f.schedules[s.ID]
	assert.Equal(t, 1, got.RunCount)
	require.NotNil(t, got.LastRunStatus)
	assert.Equal(t, domain.RunStatusSuccess, *got.LastRunStatus)
	require.NotNil(t, got.LastTicketID)
	assert.Equal(t, ticket.ID, *got.LastTicketID)
	assert.True(t, got.NextTriggerAt.After(now), "next trigger must advance past now")
	assert.Nil(t, got.ClaimedUntil, "claim must be released")
}

func TestCycleNumbersIncreaseByOne(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))

	for i := 1; i <= 3; i++ {
		report, err := runnerFor(f, now).RunOnce(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, report.Succeeded, "invocation %d", i)

		// Jump the clock past the recomputed trigger for the next round.
		now = f.schedules[s.ID].NextTriggerAt.Add(time.Minute)
	}

	tickets := f.ticketsFor(s.ID)
	require.Len(t, tickets, 3)
	for i, ticket := range tickets {
		assert.Equal(t, i+1, ticket.CycleNumber)
	}
	assert.Equal(t, 3, f.schedules[s.ID].RunCount)
}

func TestFailureIsolation(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s1 := seedSchedule(f, now.Add(-3*time.Minute))
	s2 := seedSchedule(f, now.Add(-2*time.Minute))
	s3 := seedSchedule(f, now.Add(-time.Minute))

	// Second schedule's basket disappears before the run.
	delete(f.baskets, s2.BasketID)

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Considered)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)

	// Due order is trigger-time ascending, so s2 is the middle result.
	assert.Equal(t, s2.ID, report.Results[1].ScheduleID)
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.Contains(t, report.Results[1].Error, "dependency not found")

	assert.Len(t, f.ticketsFor(s1.ID), 1)
	assert.Empty(t, f.ticketsFor(s2.ID))
	assert.Len(t, f.ticketsFor(s3.ID), 1)

	// All three recorded an attempt and advanced, including the failure.
	for _, s := range []*domain.Schedule{s1, s2, s3} {
		got := f.schedules[s.ID]
		assert.Equal(t, 1, got.RunCount)
		assert.True(t, got.NextTriggerAt.After(now))
	}
	require.NotNil(t, f.schedules[s2.ID].LastRunStatus)
	assert.Equal(t, domain.RunStatusFailed, *f.schedules[s2.ID].LastRunStatus)
	assert.Nil(t, f.schedules[s2.ID].LastTicketID)
}

func TestClaimLostIsSkipNotFailure(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))

	// Another invocation already holds the claim.
	until := time.Now().Add(time.Minute)
	f.schedules[s.ID].ClaimedUntil = &until

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Considered)
	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)

	assert.Empty(t, f.ticketsFor(s.ID))
	assert.Zero(t, f.schedules[s.ID].RunCount)
}

func TestExpiredLeaseIsReclaimable(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))

	// A crashed invocation left a stale lease behind.
	until := time.Now().Add(-time.Second)
	f.schedules[s.ID].ClaimedUntil = &until

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Len(t, f.ticketsFor(s.ID), 1)
}

func TestConcurrentInvocationsCreateOneTicket(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))

	var wg sync.WaitGroup
	reports := make([]*BatchReport, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report, err := runnerFor(f, now).RunOnce(context.Background())
			require.NoError(t, err)
			reports[i] = report
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.ticketsFor(s.ID), 1, "exactly one ticket per due window")
	assert.Equal(t, 1, f.schedules[s.ID].RunCount)
	created := reports[0].Succeeded + reports[1].Succeeded
	assert.Equal(t, 1, created)
}

func TestFutureScheduleIsNotDue(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(time.Hour))

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Considered)
	assert.Empty(t, f.ticketsFor(s.ID))
}

func TestListErrorAbortsInvocation(t *testing.T) {
	f := newFakeStore()
	seedSchedule(f, time.Now().Add(-time.Minute))
	f.listErr = errors.New("connection refused")

	report, err := runnerFor(f, time.Now()).RunOnce(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, f.tickets)
}

func TestTicketWriteFailureIsRecorded(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))
	f.insertErr = fmt.Errorf("%w: connection reset", ErrWriteFailed)

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[0].Error, "write failed")

	got := f.schedules[s.ID]
	assert.Equal(t, 1, got.RunCount)
	assert.True(t, got.NextTriggerAt.After(now))
	assert.Nil(t, got.ClaimedUntil)
}

func TestRecordFailureKeepsClaimForLeaseExpiry(t *testing.T) {
	now := time.Date(2026, time.January, 6, 10, 0, 0, 0, time.UTC)
	f := newFakeStore()
	s := seedSchedule(f, now.Add(-time.Minute))
	f.recordErr = errors.New("write timeout")

	report, err := runnerFor(f, now).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	// The claim stays held; the lease TTL is what frees the schedule.
	assert.NotNil(t, f.schedules[s.ID].ClaimedUntil)
}

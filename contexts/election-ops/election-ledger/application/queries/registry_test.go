package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hustings/contexts/election-ops/election-ledger/adapters/memory"
	"hustings/contexts/election-ops/election-ledger/application/commands"
	"hustings/contexts/election-ops/election-ledger/application/queries"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
)

type fakeRoles map[string]bool

func (r fakeRoles) IsCommissioner(_ context.Context, address string) (bool, error) {
	return r[address], nil
}

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

// newRegistryFixture creates an election through the write model and
// registers the named candidates, so reads see exactly what commands wrote.
func newRegistryFixture(t *testing.T, candidateNames []string) (queries.RegistryQueries, uint64) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	clock := &fakeClock{current: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	roles := fakeRoles{"admin": true}

	elections := commands.ElectionUseCase{
		Elections: store,
		Roles:     roles,
		Outbox:    store,
		IDGen:     store,
		Clock:     clock,
	}
	electionID, err := elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "admin",
		Name:      "general",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}

	candidates := commands.CandidateUseCase{
		Elections:  store,
		Candidates: store,
		Roles:      roles,
		Outbox:     store,
		IDGen:      store,
		Clock:      clock,
	}
	for _, name := range candidateNames {
		if _, err := candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
			Caller:     "admin",
			ElectionID: electionID,
			Name:       name,
		}); err != nil {
			t.Fatalf("register candidate %q failed: %v", name, err)
		}
	}

	return queries.RegistryQueries{Elections: store, Candidates: store, Voters: store}, electionID
}

func TestCandidateRoundTrip(t *testing.T) {
	q, electionID := newRegistryFixture(t, []string{"Alice"})

	candidate, err := q.Candidate(context.Background(), electionID, 0)
	if err != nil {
		t.Fatalf("candidate lookup failed: %v", err)
	}
	if candidate.Name != "Alice" {
		t.Fatalf("expected name Alice, got %q", candidate.Name)
	}
	if candidate.VoteCount != 0 {
		t.Fatalf("expected zero initial tally, got %d", candidate.VoteCount)
	}
	if !candidate.Active {
		t.Fatalf("expected freshly registered candidate to be active")
	}
	if candidate.ID != 0 || candidate.ElectionID != electionID {
		t.Fatalf("expected ids (0, %d), got (%d, %d)", electionID, candidate.ID, candidate.ElectionID)
	}
}

func TestCandidateUnknownIDRejected(t *testing.T) {
	q, electionID := newRegistryFixture(t, []string{"Alice"})

	if _, err := q.Candidate(context.Background(), electionID, 7); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected candidate not-found, got %v", err)
	}
}

func TestCandidateUnknownElectionRejected(t *testing.T) {
	q, _ := newRegistryFixture(t, []string{"Alice"})

	if _, err := q.Candidate(context.Background(), 99, 0); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not-found, got %v", err)
	}
}

func TestAllCandidatesInRegistrationOrder(t *testing.T) {
	q, electionID := newRegistryFixture(t, []string{"Alice", "Bob", "Carol"})

	roster, err := q.AllCandidates(context.Background(), electionID)
	if err != nil {
		t.Fatalf("roster lookup failed: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(roster))
	}
	for i, want := range []string{"Alice", "Bob", "Carol"} {
		if roster[i].ID != uint64(i) || roster[i].Name != want {
			t.Fatalf("expected (%d, %s) at position %d, got (%d, %s)", i, want, i, roster[i].ID, roster[i].Name)
		}
	}

	if _, err := q.AllCandidates(context.Background(), 99); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not-found, got %v", err)
	}
}

func TestCandidatesCount(t *testing.T) {
	q, electionID := newRegistryFixture(t, []string{"Alice", "Bob"})

	count, err := q.CandidatesCount(context.Background(), electionID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 candidates, got %d", count)
	}

	if _, err := q.CandidatesCount(context.Background(), 99); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not-found, got %v", err)
	}
}

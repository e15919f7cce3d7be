package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hustings/contexts/election-ops/election-ledger/adapters/memory"
	"hustings/contexts/election-ops/election-ledger/application/commands"
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

func newElectionUseCase(clock *fakeClock) (commands.ElectionUseCase, *memory.Store) {
	store := memory.NewStore()
	return commands.ElectionUseCase{
		Elections: store,
		Roles:     fakeRoles{"chair": true},
		Outbox:    store,
		IDGen:     store,
		Clock:     clock,
	}, store
}

func TestCreateElectionValidation(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{current: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	uc, _ := newElectionUseCase(clock)
	start := clock.current.Add(time.Hour)
	end := clock.current.Add(2 * time.Hour)

	cases := []struct {
		name string
		cmd  commands.CreateElectionCommand
		want error
	}{
		{
			name: "empty name",
			cmd:  commands.CreateElectionCommand{Caller: "chair", Name: "  ", StartTime: start, EndTime: end},
			want: domainerrors.ErrEmptyName,
		},
		{
			name: "start after end",
			cmd:  commands.CreateElectionCommand{Caller: "chair", Name: "x", StartTime: end, EndTime: start},
			want: domainerrors.ErrInvalidSchedule,
		},
		{
			name: "start equals end",
			cmd:  commands.CreateElectionCommand{Caller: "chair", Name: "x", StartTime: start, EndTime: start},
			want: domainerrors.ErrInvalidSchedule,
		},
		{
			name: "start in the past",
			cmd:  commands.CreateElectionCommand{Caller: "chair", Name: "x", StartTime: clock.current.Add(-time.Minute), EndTime: end},
			want: domainerrors.ErrScheduleInPast,
		},
		{
			name: "missing caller",
			cmd:  commands.CreateElectionCommand{Name: "x", StartTime: start, EndTime: end},
			want: domainerrors.ErrInvalidAddress,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.CreateElection(ctx, tc.cmd); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// A start exactly at the current instant is allowed.
	if _, err := uc.CreateElection(ctx, commands.CreateElectionCommand{
		Caller: "chair", Name: "now", StartTime: clock.current, EndTime: end,
	}); err != nil {
		t.Fatalf("create with immediate start failed: %v", err)
	}
}

func TestCreatorCanManageWithoutCommissionerRole(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{current: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	roles := fakeRoles{"chair": true}
	elections := commands.ElectionUseCase{
		Elections: store, Roles: roles, Outbox: store, IDGen: store, Clock: clock,
	}
	candidates := commands.CandidateUseCase{
		Elections: store, Candidates: store, Roles: roles, Outbox: store, IDGen: store, Clock: clock,
	}

	electionID, err := elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "chair",
		Name:      "managed",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}

	// The creator keeps management rights even after losing the
	// commissioner role.
	delete(roles, "chair")
	if _, err := candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "chair", ElectionID: electionID, Name: "Alice",
	}); err != nil {
		t.Fatalf("creator candidate registration failed: %v", err)
	}

	// A stranger has none.
	if _, err := candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "mallory", ElectionID: electionID, Name: "Eve",
	}); !errors.Is(err, domainerrors.ErrNotElectionManager) {
		t.Fatalf("expected manager rejection, got %v", err)
	}

	clock.current = clock.current.Add(2 * time.Hour)
	if err := elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "chair", ElectionID: electionID,
	}); err != nil {
		t.Fatalf("creator finalize failed: %v", err)
	}
}

func TestEndVotingEarlyRequiresActiveElection(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{current: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	uc, _ := newElectionUseCase(clock)

	electionID, err := uc.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "chair",
		Name:      "stoppable",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if err := uc.EndVotingEarly(ctx, commands.EndVotingEarlyCommand{
		Caller: "chair", ElectionID: electionID,
	}); err != nil {
		t.Fatalf("end voting early failed: %v", err)
	}
	if err := uc.EndVotingEarly(ctx, commands.EndVotingEarlyCommand{
		Caller: "chair", ElectionID: electionID,
	}); !errors.Is(err, domainerrors.ErrElectionNotActive) {
		t.Fatalf("expected not-active rejection on repeat, got %v", err)
	}
	if err := uc.EndVotingEarly(ctx, commands.EndVotingEarlyCommand{
		Caller: "chair", ElectionID: 42,
	}); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected not-found rejection, got %v", err)
	}
}

package electionledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	electionledger "hustings/contexts/election-ops/election-ledger"
	"hustings/contexts/election-ops/election-ledger/application/commands"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	accesscontrol "hustings/contexts/identity-access/access-control"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func newTestModule(t *testing.T) (electionledger.Module, *fakeClock) {
	t.Helper()
	access := accesscontrol.NewInMemoryModule("admin", nil)
	clock := &fakeClock{current: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	return electionledger.NewInMemoryModule(access.Queries, clock, nil), clock
}

func TestElectionFullLifecycle(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)
	base := clock.current

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "admin",
		Name:      "city council",
		StartTime: base.Add(1 * time.Hour),
		EndTime:   base.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if electionID != 0 {
		t.Fatalf("expected first election id 0, got %d", electionID)
	}

	aliceID, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Alice",
	})
	if err != nil {
		t.Fatalf("register alice failed: %v", err)
	}
	bobID, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Bob",
	})
	if err != nil {
		t.Fatalf("register bob failed: %v", err)
	}
	if aliceID != 0 || bobID != 1 {
		t.Fatalf("expected sequential candidate ids 0 and 1, got %d and %d", aliceID, bobID)
	}

	for _, address := range []string{"v1", "v2", "v3"} {
		if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
			Caller: "admin", ElectionID: electionID, Address: address,
		}); err != nil {
			t.Fatalf("register voter %s failed: %v", address, err)
		}
	}

	// Before the window opens no ballot is accepted.
	err = module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: aliceID,
	})
	if !errors.Is(err, domainerrors.ErrNotInVotingPeriod) {
		t.Fatalf("expected not-in-voting-period before start, got %v", err)
	}

	clock.current = base.Add(90 * time.Minute)
	for _, ballot := range []struct {
		voter     string
		candidate uint64
	}{
		{"v1", aliceID},
		{"v2", aliceID},
		{"v3", bobID},
	} {
		if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
			Caller: ballot.voter, ElectionID: electionID, CandidateID: ballot.candidate,
		}); err != nil {
			t.Fatalf("ballot %s -> %d failed: %v", ballot.voter, ballot.candidate, err)
		}
	}

	election, err := module.Registry.Election(ctx, electionID)
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.TotalVotes != 3 {
		t.Fatalf("expected 3 total votes, got %d", election.TotalVotes)
	}
	roster, err := module.Results.Results(ctx, electionID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	var sum uint64
	for _, candidate := range roster {
		sum += candidate.VoteCount
	}
	if sum != election.TotalVotes {
		t.Fatalf("candidate tallies sum to %d, election total is %d", sum, election.TotalVotes)
	}

	// Finalization needs the scheduled end to have passed.
	err = module.Elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "admin", ElectionID: electionID,
	})
	if !errors.Is(err, domainerrors.ErrElectionNotEnded) {
		t.Fatalf("expected not-ended before end time, got %v", err)
	}
	if _, err := module.Results.Winner(ctx, electionID); !errors.Is(err, domainerrors.ErrElectionNotFinal) {
		t.Fatalf("expected winner to require finalization, got %v", err)
	}

	clock.current = base.Add(3 * time.Hour)
	if err := module.Elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "admin", ElectionID: electionID,
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	election, err = module.Registry.Election(ctx, electionID)
	if err != nil {
		t.Fatalf("get finalized election failed: %v", err)
	}
	if !election.Finalized || election.Active {
		t.Fatalf("expected finalized inactive election, got finalized=%v active=%v", election.Finalized, election.Active)
	}

	winner, err := module.Results.Winner(ctx, electionID)
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}
	if winner.ID != aliceID || winner.VoteCount != 2 {
		t.Fatalf("expected alice to win with 2 votes, got candidate %d with %d", winner.ID, winner.VoteCount)
	}

	// Finalized elections are frozen.
	if err := module.Elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "admin", ElectionID: electionID,
	}); !errors.Is(err, domainerrors.ErrElectionFinalized) {
		t.Fatalf("expected double finalize to fail, got %v", err)
	}
	if _, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Carol",
	}); !errors.Is(err, domainerrors.ErrElectionFinalized) {
		t.Fatalf("expected candidate registration on finalized election to fail, got %v", err)
	}
}

func TestVotingWindowBoundaries(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)
	base := clock.current
	start := base.Add(1 * time.Hour)
	end := base.Add(2 * time.Hour)

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller: "admin", Name: "boundary", StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Alice",
	}); err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}
	for _, address := range []string{"early", "late"} {
		if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
			Caller: "admin", ElectionID: electionID, Address: address,
		}); err != nil {
			t.Fatalf("register voter failed: %v", err)
		}
	}

	// The window is half-open: a ballot at the exact start is counted.
	clock.current = start
	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "early", ElectionID: electionID, CandidateID: 0,
	}); err != nil {
		t.Fatalf("ballot at exact start failed: %v", err)
	}

	// A ballot at the exact end is not.
	clock.current = end
	err = module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "late", ElectionID: electionID, CandidateID: 0,
	})
	if !errors.Is(err, domainerrors.ErrNotInVotingPeriod) {
		t.Fatalf("expected rejection at exact end, got %v", err)
	}
}

func TestCreateElectionRequiresCommissioner(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)

	_, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "mallory",
		Name:      "rogue",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	count, err := module.Store.CountElections(ctx)
	if err != nil {
		t.Fatalf("count elections failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no election created, got %d", count)
	}
}

func TestBatchRegisterSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "admin",
		Name:      "batch",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if err := module.Voters.BatchRegisterVoters(ctx, commands.BatchRegisterVotersCommand{
		Caller:     "admin",
		ElectionID: electionID,
		Addresses:  []string{"v1", "v2", "v1"},
	}); err != nil {
		t.Fatalf("batch register failed: %v", err)
	}
	count, err := module.Registry.RegisteredVotersCount(ctx, electionID)
	if err != nil {
		t.Fatalf("voters count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 registered voters, got %d", count)
	}

	// The single-voter path fails loudly on the same duplicate.
	if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Caller: "admin", ElectionID: electionID, Address: "v2",
	}); !errors.Is(err, domainerrors.ErrVoterAlreadyExists) {
		t.Fatalf("expected already-registered error, got %v", err)
	}
}

func TestBallotRejections(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)
	base := clock.current

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller: "admin", Name: "rejections",
		StartTime: base.Add(time.Hour),
		EndTime:   base.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	keptID, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Kept",
	})
	if err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}
	droppedID, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Dropped",
	})
	if err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}
	if err := module.Candidates.DeactivateCandidate(ctx, commands.DeactivateCandidateCommand{
		Caller: "admin", ElectionID: electionID, CandidateID: droppedID,
	}); err != nil {
		t.Fatalf("deactivate candidate failed: %v", err)
	}
	if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Caller: "admin", ElectionID: electionID, Address: "v1",
	}); err != nil {
		t.Fatalf("register voter failed: %v", err)
	}

	clock.current = base.Add(2 * time.Hour)

	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "stranger", ElectionID: electionID, CandidateID: keptID,
	}); !errors.Is(err, domainerrors.ErrVoterNotRegistered) {
		t.Fatalf("expected unregistered voter rejection, got %v", err)
	}
	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: 99,
	}); !errors.Is(err, domainerrors.ErrInvalidCandidate) {
		t.Fatalf("expected invalid candidate rejection, got %v", err)
	}
	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: droppedID,
	}); !errors.Is(err, domainerrors.ErrCandidateInactive) {
		t.Fatalf("expected inactive candidate rejection, got %v", err)
	}

	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: keptID,
	}); err != nil {
		t.Fatalf("valid ballot failed: %v", err)
	}
	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: keptID,
	}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected double-vote rejection, got %v", err)
	}

	election, err := module.Registry.Election(ctx, electionID)
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.TotalVotes != 1 {
		t.Fatalf("expected exactly one counted vote, got %d", election.TotalVotes)
	}
}

func TestEndVotingEarlyStopsBallotsButNotFinalization(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)
	base := clock.current

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller: "admin", Name: "early-close",
		StartTime: base.Add(time.Hour),
		EndTime:   base.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Alice",
	}); err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}
	if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Caller: "admin", ElectionID: electionID, Address: "v1",
	}); err != nil {
		t.Fatalf("register voter failed: %v", err)
	}

	clock.current = base.Add(90 * time.Minute)
	if err := module.Elections.EndVotingEarly(ctx, commands.EndVotingEarlyCommand{
		Caller: "admin", ElectionID: electionID,
	}); err != nil {
		t.Fatalf("end voting early failed: %v", err)
	}

	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: 0,
	}); !errors.Is(err, domainerrors.ErrNotInVotingPeriod) {
		t.Fatalf("expected ballot rejection after early close, got %v", err)
	}

	// Early close does not unlock finalization before the scheduled end.
	if err := module.Elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "admin", ElectionID: electionID,
	}); !errors.Is(err, domainerrors.ErrElectionNotEnded) {
		t.Fatalf("expected not-ended rejection after early close, got %v", err)
	}

	clock.current = base.Add(3 * time.Hour)
	if err := module.Elections.FinalizeElection(ctx, commands.FinalizeElectionCommand{
		Caller: "admin", ElectionID: electionID,
	}); err != nil {
		t.Fatalf("finalize after scheduled end failed: %v", err)
	}
}

func TestVoterQueryDefaults(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller:    "admin",
		Name:      "voters",
		StartTime: clock.current.Add(time.Hour),
		EndTime:   clock.current.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}

	voter, err := module.Registry.Voter(ctx, electionID, "nobody")
	if err != nil {
		t.Fatalf("voter query failed: %v", err)
	}
	if voter.Registered || voter.HasVoted {
		t.Fatalf("expected default unregistered record, got %+v", voter)
	}

	if _, err := module.Registry.Voter(ctx, 42, "nobody"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected unknown election rejection, got %v", err)
	}
}

func TestCommandsProduceOutboxEvents(t *testing.T) {
	ctx := context.Background()
	module, clock := newTestModule(t)
	base := clock.current

	electionID, err := module.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Caller: "admin", Name: "events",
		StartTime: base.Add(time.Hour),
		EndTime:   base.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Caller: "admin", ElectionID: electionID, Name: "Alice",
	}); err != nil {
		t.Fatalf("register candidate failed: %v", err)
	}
	if err := module.Voters.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Caller: "admin", ElectionID: electionID, Address: "v1",
	}); err != nil {
		t.Fatalf("register voter failed: %v", err)
	}
	clock.current = base.Add(time.Hour)
	if err := module.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		Caller: "v1", ElectionID: electionID, CandidateID: 0,
	}); err != nil {
		t.Fatalf("ballot failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	seen := make(map[string]bool, len(pending))
	for _, row := range pending {
		seen[row.EventType] = true
	}
	for _, want := range []string{
		commands.EventElectionCreated,
		commands.EventCandidateRegistered,
		commands.EventVoterRegistered,
		commands.EventVoteRecorded,
	} {
		if !seen[want] {
			t.Fatalf("expected outbox event %s, got %v", want, seen)
		}
	}
}

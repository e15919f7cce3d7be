package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "hustings/contexts/election-ops/election-ledger/application"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// CastBallotCommand records one vote by the calling voter.
type CastBallotCommand struct {
	Caller      string
	ElectionID  uint64
	CandidateID uint64
}

// BallotUseCase is the single mutation path that touches all three
// registries. Preconditions are evaluated in a fixed order, each with its
// own failure mode; the effect is committed through BallotApplier as one
// indivisible unit.
type BallotUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Voters     ports.VoterRepository
	Ballots    ports.BallotApplier
	Outbox     ports.OutboxWriter
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

// CastBallot validates the vote-casting invariant and applies the vote.
// Precondition order: election exists; voting window open; caller
// registered; caller has not voted; candidate id in range; candidate active.
func (uc BallotUseCase) CastBallot(ctx context.Context, cmd CastBallotCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	logger.Info("ballot cast processing started",
		"event", "ledger_ballot_cast_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"candidate_id", cmd.CandidateID,
		"voter", caller,
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	now := uc.now()
	if !election.VotingOpen(now) {
		logger.Warn("ballot rejected outside voting period",
			"event", "ledger_ballot_outside_window",
			"module", moduleName,
			"layer", "application",
			"election_id", election.ID,
			"voter", caller,
		)
		return domainerrors.ErrNotInVotingPeriod
	}
	voter, found, err := uc.Voters.GetVoter(ctx, election.ID, caller)
	if err != nil {
		return err
	}
	if !found || !voter.Registered {
		return domainerrors.ErrVoterNotRegistered
	}
	if voter.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}
	count, err := uc.Candidates.CountCandidates(ctx, election.ID)
	if err != nil {
		return err
	}
	if cmd.CandidateID >= count {
		return domainerrors.ErrInvalidCandidate
	}
	candidate, err := uc.Candidates.GetCandidate(ctx, election.ID, cmd.CandidateID)
	if err != nil {
		return err
	}
	if !candidate.Active {
		return domainerrors.ErrCandidateInactive
	}

	if err := uc.Ballots.ApplyBallot(ctx, ports.BallotApplication{
		ElectionID:  election.ID,
		CandidateID: candidate.ID,
		Address:     voter.Address,
		VotedAt:     now,
	}); err != nil {
		return err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventVoteRecorded, election.ID, now, map[string]any{
		"election_id":  election.ID,
		"candidate_id": candidate.ID,
		"voter":        voter.Address,
		"voted_at":     now.Format(time.RFC3339),
	}); err != nil {
		return err
	}

	logger.Info("ballot recorded",
		"event", "ledger_ballot_recorded",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"candidate_id", candidate.ID,
		"voter", voter.Address,
	)
	return nil
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

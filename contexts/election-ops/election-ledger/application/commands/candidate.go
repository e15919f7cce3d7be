package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "hustings/contexts/election-ops/election-ledger/application"
	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// RegisterCandidateCommand adds a candidate to an unfinalized election.
type RegisterCandidateCommand struct {
	Caller     string
	ElectionID uint64
	Name       string
}

// DeactivateCandidateCommand flags a candidate inactive. The candidate's id
// and accrued vote count are retained for the audit record.
type DeactivateCandidateCommand struct {
	Caller      string
	ElectionID  uint64
	CandidateID uint64
}

// CandidateUseCase owns the candidate roster of each election.
type CandidateUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Roles      ports.RoleDirectory
	Outbox     ports.OutboxWriter
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

// RegisterCandidate assigns the next per-election sequential id and stores
// an active candidate with a zero vote count.
func (uc CandidateUseCase) RegisterCandidate(ctx context.Context, cmd RegisterCandidateCommand) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	logger.Info("candidate register processing started",
		"event", "ledger_candidate_register_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"caller", strings.TrimSpace(cmd.Caller),
		"name", name,
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return 0, err
	}
	if err := requireNotFinalized(election); err != nil {
		return 0, err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("candidate register authorization failed",
			"event", "ledger_candidate_register_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return 0, err
	}
	if name == "" {
		return 0, domainerrors.ErrEmptyName
	}
	now := uc.now()

	candidateID, err := uc.Candidates.InsertCandidate(ctx, entities.Candidate{
		ElectionID:   election.ID,
		Name:         name,
		Active:       true,
		RegisteredAt: now,
	})
	if err != nil {
		return 0, err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventCandidateRegistered, election.ID, now, map[string]any{
		"election_id":  election.ID,
		"candidate_id": candidateID,
		"name":         name,
	}); err != nil {
		return 0, err
	}

	logger.Info("candidate registered",
		"event", "ledger_candidate_registered",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"candidate_id", candidateID,
		"name", name,
	)
	return candidateID, nil
}

// DeactivateCandidate flags the candidate inactive while keeping its accrued
// history. Ids are never reused or renumbered.
func (uc CandidateUseCase) DeactivateCandidate(ctx context.Context, cmd DeactivateCandidateCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("candidate deactivate processing started",
		"event", "ledger_candidate_deactivate_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"candidate_id", cmd.CandidateID,
		"caller", strings.TrimSpace(cmd.Caller),
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	if err := requireNotFinalized(election); err != nil {
		return err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("candidate deactivate authorization failed",
			"event", "ledger_candidate_deactivate_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"candidate_id", cmd.CandidateID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return err
	}
	candidate, err := uc.Candidates.GetCandidate(ctx, cmd.ElectionID, cmd.CandidateID)
	if err != nil {
		return err
	}

	candidate.Active = false
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return err
	}

	logger.Info("candidate deactivated",
		"event", "ledger_candidate_deactivated",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"candidate_id", candidate.ID,
		"vote_count", candidate.VoteCount,
	)
	return nil
}

func (uc CandidateUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

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

const moduleName = "election-ops/election-ledger"

// CreateElectionCommand is the write-model input for election creation.
type CreateElectionCommand struct {
	Caller    string
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// FinalizeElectionCommand freezes an election's results irreversibly.
type FinalizeElectionCommand struct {
	Caller     string
	ElectionID uint64
}

// EndVotingEarlyCommand stops vote acceptance without finalizing.
type EndVotingEarlyCommand struct {
	Caller     string
	ElectionID uint64
}

// ElectionUseCase owns election lifecycle transitions: creation, early close
// and irreversible finalization.
type ElectionUseCase struct {
	Elections ports.ElectionRepository
	Roles     ports.RoleDirectory
	Outbox    ports.OutboxWriter
	IDGen     ports.IDGenerator
	Clock     ports.Clock
	Logger    *slog.Logger
}

// CreateElection validates the schedule, assigns the next sequential id and
// stores an active, unfinalized election owned by the caller.
func (uc ElectionUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	name := strings.TrimSpace(cmd.Name)
	logger.Info("election create processing started",
		"event", "ledger_election_create_started",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"name", name,
	)

	if err := requireCommissioner(ctx, uc.Roles, caller); err != nil {
		logger.Warn("election create authorization failed",
			"event", "ledger_election_create_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"caller", caller,
			"error", err.Error(),
		)
		return 0, err
	}
	now := uc.now()
	if name == "" {
		return 0, domainerrors.ErrEmptyName
	}
	if !cmd.StartTime.Before(cmd.EndTime) {
		return 0, domainerrors.ErrInvalidSchedule
	}
	if cmd.StartTime.Before(now) {
		return 0, domainerrors.ErrScheduleInPast
	}

	election := entities.Election{
		Name:      name,
		StartTime: cmd.StartTime.UTC(),
		EndTime:   cmd.EndTime.UTC(),
		Active:    true,
		Creator:   caller,
		CreatedAt: now,
	}
	electionID, err := uc.Elections.InsertElection(ctx, election)
	if err != nil {
		return 0, err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventElectionCreated, electionID, now, map[string]any{
		"election_id": electionID,
		"name":        name,
		"creator":     caller,
		"start_time":  cmd.StartTime.UTC().Format(time.RFC3339),
		"end_time":    cmd.EndTime.UTC().Format(time.RFC3339),
	}); err != nil {
		return 0, err
	}

	logger.Info("election created",
		"event", "ledger_election_created",
		"module", moduleName,
		"layer", "application",
		"election_id", electionID,
		"name", name,
		"creator", caller,
	)
	return electionID, nil
}

// FinalizeElection freezes the election once its scheduled end has passed.
// An election ended early via EndVotingEarly still waits for the scheduled
// end time before it can be finalized.
func (uc ElectionUseCase) FinalizeElection(ctx context.Context, cmd FinalizeElectionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("election finalize processing started",
		"event", "ledger_election_finalize_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"caller", strings.TrimSpace(cmd.Caller),
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("election finalize authorization failed",
			"event", "ledger_election_finalize_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return err
	}
	now := uc.now()
	if election.Finalized {
		return domainerrors.ErrElectionFinalized
	}
	if !election.Ended(now) {
		return domainerrors.ErrElectionNotEnded
	}

	election.Finalized = true
	election.Active = false
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventElectionFinalized, election.ID, now, map[string]any{
		"election_id":  election.ID,
		"total_votes":  election.TotalVotes,
		"finalized_at": now.Format(time.RFC3339),
	}); err != nil {
		return err
	}

	logger.Info("election finalized",
		"event", "ledger_election_finalized",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"total_votes", election.TotalVotes,
	)
	return nil
}

// EndVotingEarly deactivates an election ahead of schedule. Finalization is
// a separate transition gated on the scheduled end time.
func (uc ElectionUseCase) EndVotingEarly(ctx context.Context, cmd EndVotingEarlyCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("election end-early processing started",
		"event", "ledger_election_end_early_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"caller", strings.TrimSpace(cmd.Caller),
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("election end-early authorization failed",
			"event", "ledger_election_end_early_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return err
	}
	if !election.Active {
		return domainerrors.ErrElectionNotActive
	}
	now := uc.now()

	election.Active = false
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventElectionStatusChanged, election.ID, now, map[string]any{
		"election_id": election.ID,
		"active":      false,
		"reason":      "ended_early",
	}); err != nil {
		return err
	}

	logger.Info("election voting ended early",
		"event", "ledger_election_ended_early",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
	)
	return nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "hustings/contexts/election-ops/election-ledger/application"
	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// RegisterVoterCommand adds a single address to an election's voter roll.
type RegisterVoterCommand struct {
	Caller     string
	ElectionID uint64
	Address    string
}

// BatchRegisterVotersCommand is the bulk-import variant. Already-registered
// addresses are skipped instead of failing the batch.
type BatchRegisterVotersCommand struct {
	Caller     string
	ElectionID uint64
	Addresses  []string
}

// VoterUseCase owns the voter roll of each election.
type VoterUseCase struct {
	Elections ports.ElectionRepository
	Voters    ports.VoterRepository
	Roles     ports.RoleDirectory
	Outbox    ports.OutboxWriter
	IDGen     ports.IDGenerator
	Clock     ports.Clock
	Logger    *slog.Logger
}

// RegisterVoter stores a registration record. A duplicate address fails with
// the already-registered sentinel; the bulk path below deliberately does not.
func (uc VoterUseCase) RegisterVoter(ctx context.Context, cmd RegisterVoterCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	address := strings.TrimSpace(cmd.Address)
	logger.Info("voter register processing started",
		"event", "ledger_voter_register_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"caller", strings.TrimSpace(cmd.Caller),
		"address", address,
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	if err := requireNotFinalized(election); err != nil {
		return err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("voter register authorization failed",
			"event", "ledger_voter_register_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return err
	}
	if address == "" {
		return domainerrors.ErrInvalidAddress
	}
	now := uc.now()

	if err := uc.Voters.InsertVoter(ctx, entities.Voter{
		ElectionID:   election.ID,
		Address:      address,
		Registered:   true,
		RegisteredAt: now,
	}); err != nil {
		return err
	}
	if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventVoterRegistered, election.ID, now, map[string]any{
		"election_id": election.ID,
		"address":     address,
	}); err != nil {
		return err
	}

	logger.Info("voter registered",
		"event", "ledger_voter_registered",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"address", address,
	)
	return nil
}

// BatchRegisterVoters validates the whole batch up front, then registers
// each address, silently skipping ones already on the roll. Duplicates
// within the batch itself are skipped the same way.
func (uc VoterUseCase) BatchRegisterVoters(ctx context.Context, cmd BatchRegisterVotersCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("voter batch register processing started",
		"event", "ledger_voter_batch_register_started",
		"module", moduleName,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"caller", strings.TrimSpace(cmd.Caller),
		"batch_size", len(cmd.Addresses),
	)

	election, err := uc.Elections.GetElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}
	if err := requireNotFinalized(election); err != nil {
		return err
	}
	if err := requireManager(ctx, uc.Roles, election, cmd.Caller); err != nil {
		logger.Warn("voter batch register authorization failed",
			"event", "ledger_voter_batch_register_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"caller", strings.TrimSpace(cmd.Caller),
			"error", err.Error(),
		)
		return err
	}

	// Validation happens before the first insert so a malformed batch aborts
	// with zero side effects.
	addresses := make([]string, 0, len(cmd.Addresses))
	for _, raw := range cmd.Addresses {
		address := strings.TrimSpace(raw)
		if address == "" {
			return domainerrors.ErrInvalidAddress
		}
		addresses = append(addresses, address)
	}
	now := uc.now()

	registered := 0
	for _, address := range addresses {
		err := uc.Voters.InsertVoter(ctx, entities.Voter{
			ElectionID:   election.ID,
			Address:      address,
			Registered:   true,
			RegisteredAt: now,
		})
		if errors.Is(err, domainerrors.ErrVoterAlreadyExists) {
			continue
		}
		if err != nil {
			return err
		}
		if err := appendLedgerEvent(ctx, uc.Outbox, uc.IDGen, EventVoterRegistered, election.ID, now, map[string]any{
			"election_id": election.ID,
			"address":     address,
		}); err != nil {
			return err
		}
		registered++
	}

	logger.Info("voter batch registered",
		"event", "ledger_voter_batch_registered",
		"module", moduleName,
		"layer", "application",
		"election_id", election.ID,
		"batch_size", len(addresses),
		"registered_count", registered,
	)
	return nil
}

func (uc VoterUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

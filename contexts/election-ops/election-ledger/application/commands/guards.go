package commands

import (
	"context"
	"strings"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// Guards are pure precondition checks: they read state and return a domain
// error, never mutate. Commands run every guard before the first write so a
// failed operation leaves no partial state behind.

func requireCommissioner(ctx context.Context, roles ports.RoleDirectory, caller string) error {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domainerrors.ErrInvalidAddress
	}
	ok, err := roles.IsCommissioner(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrNotCommissioner
	}
	return nil
}

// requireManager authorizes callers that are either a commissioner or the
// creator of the given election.
func requireManager(ctx context.Context, roles ports.RoleDirectory, election entities.Election, caller string) error {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domainerrors.ErrInvalidAddress
	}
	if caller == election.Creator {
		return nil
	}
	ok, err := roles.IsCommissioner(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrNotElectionManager
	}
	return nil
}

func requireNotFinalized(election entities.Election) error {
	if election.Finalized {
		return domainerrors.ErrElectionFinalized
	}
	return nil
}

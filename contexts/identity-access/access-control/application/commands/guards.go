package commands

import (
	"context"
	"strings"

	domainerrors "hustings/contexts/identity-access/access-control/domain/errors"
	"hustings/contexts/identity-access/access-control/ports"
)

const moduleName = "identity-access/access-control"

func requireAdministrator(ctx context.Context, roles ports.RoleRepository, caller string) error {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return domainerrors.ErrInvalidAddress
	}
	admin, err := roles.Administrator(ctx)
	if err != nil {
		return err
	}
	if caller != admin {
		return domainerrors.ErrNotAdministrator
	}
	return nil
}

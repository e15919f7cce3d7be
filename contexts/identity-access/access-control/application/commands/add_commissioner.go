package commands

import (
	"context"
	"log/slog"
	"strings"

	application "hustings/contexts/identity-access/access-control/application"
	"hustings/contexts/identity-access/access-control/domain/entities"
	domainerrors "hustings/contexts/identity-access/access-control/domain/errors"
	"hustings/contexts/identity-access/access-control/ports"
)

// AddCommissionerCommand grants election-management authority to an address.
type AddCommissionerCommand struct {
	Caller string
	Target string
}

// AddCommissionerUseCase adds an address to the commissioner set. Adding an
// address that already holds a grant is a no-op.
type AddCommissionerUseCase struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc AddCommissionerUseCase) Execute(ctx context.Context, cmd AddCommissionerCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	target := strings.TrimSpace(cmd.Target)
	logger.Info("add commissioner started",
		"event", "access_add_commissioner_started",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"target", target,
	)

	if err := requireAdministrator(ctx, uc.Roles, caller); err != nil {
		logger.Warn("add commissioner authorization failed",
			"event", "access_add_commissioner_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"caller", caller,
			"error", err.Error(),
		)
		return err
	}
	if target == "" {
		return domainerrors.ErrInvalidAddress
	}

	grant := entities.Commissioner{
		Address: target,
		AddedBy: caller,
		AddedAt: uc.Clock.Now(),
	}
	if err := uc.Roles.AddCommissioner(ctx, grant); err != nil {
		logger.Error("add commissioner persistence failed",
			"event", "access_add_commissioner_failed",
			"module", moduleName,
			"layer", "application",
			"target", target,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("add commissioner completed",
		"event", "access_add_commissioner_completed",
		"module", moduleName,
		"layer", "application",
		"target", target,
	)
	return nil
}

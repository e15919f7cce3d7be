package commands

import (
	"context"
	"log/slog"
	"strings"

	application "hustings/contexts/identity-access/access-control/application"
	domainerrors "hustings/contexts/identity-access/access-control/domain/errors"
	"hustings/contexts/identity-access/access-control/ports"
)

// RemoveCommissionerCommand revokes election-management authority.
type RemoveCommissionerCommand struct {
	Caller string
	Target string
}

// RemoveCommissionerUseCase removes an address from the commissioner set.
// The administrator's own grant can never be removed this way.
type RemoveCommissionerUseCase struct {
	Roles  ports.RoleRepository
	Logger *slog.Logger
}

func (uc RemoveCommissionerUseCase) Execute(ctx context.Context, cmd RemoveCommissionerCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	target := strings.TrimSpace(cmd.Target)
	logger.Info("remove commissioner started",
		"event", "access_remove_commissioner_started",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"target", target,
	)

	if err := requireAdministrator(ctx, uc.Roles, caller); err != nil {
		logger.Warn("remove commissioner authorization failed",
			"event", "access_remove_commissioner_authorization_failed",
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
	admin, err := uc.Roles.Administrator(ctx)
	if err != nil {
		return err
	}
	if target == admin {
		return domainerrors.ErrAdministratorProtected
	}

	if err := uc.Roles.RemoveCommissioner(ctx, target); err != nil {
		logger.Error("remove commissioner persistence failed",
			"event", "access_remove_commissioner_failed",
			"module", moduleName,
			"layer", "application",
			"target", target,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("remove commissioner completed",
		"event", "access_remove_commissioner_completed",
		"module", moduleName,
		"layer", "application",
		"target", target,
	)
	return nil
}

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

// TransferAdminCommand reassigns the administrator role.
type TransferAdminCommand struct {
	Caller   string
	NewAdmin string
}

// TransferAdminUseCase moves the administrator role to a new address. The
// new administrator gains a commissioner grant; the outgoing one keeps its
// existing grant.
type TransferAdminUseCase struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc TransferAdminUseCase) Execute(ctx context.Context, cmd TransferAdminCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	newAdmin := strings.TrimSpace(cmd.NewAdmin)
	logger.Info("transfer admin started",
		"event", "access_transfer_admin_started",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"new_admin", newAdmin,
	)

	if err := requireAdministrator(ctx, uc.Roles, caller); err != nil {
		logger.Warn("transfer admin authorization failed",
			"event", "access_transfer_admin_authorization_failed",
			"module", moduleName,
			"layer", "application",
			"caller", caller,
			"error", err.Error(),
		)
		return err
	}
	if newAdmin == "" {
		return domainerrors.ErrInvalidAddress
	}

	grant := entities.Commissioner{
		Address: newAdmin,
		AddedBy: caller,
		AddedAt: uc.Clock.Now(),
	}
	if err := uc.Roles.AddCommissioner(ctx, grant); err != nil {
		logger.Error("transfer admin grant failed",
			"event", "access_transfer_admin_grant_failed",
			"module", moduleName,
			"layer", "application",
			"new_admin", newAdmin,
			"error", err.Error(),
		)
		return err
	}
	if err := uc.Roles.SetAdministrator(ctx, newAdmin); err != nil {
		logger.Error("transfer admin persistence failed",
			"event", "access_transfer_admin_failed",
			"module", moduleName,
			"layer", "application",
			"new_admin", newAdmin,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("transfer admin completed",
		"event", "access_transfer_admin_completed",
		"module", moduleName,
		"layer", "application",
		"new_admin", newAdmin,
	)
	return nil
}

package accesscontrol

import (
	"log/slog"

	"hustings/contexts/identity-access/access-control/adapters/memory"
	"hustings/contexts/identity-access/access-control/application/commands"
	"hustings/contexts/identity-access/access-control/application/queries"
	"hustings/contexts/identity-access/access-control/ports"
)

type Module struct {
	AddCommissioner    commands.AddCommissionerUseCase
	RemoveCommissioner commands.RemoveCommissionerUseCase
	TransferAdmin      commands.TransferAdminUseCase
	Queries            queries.RoleQueries
	Store              *memory.Store
}

type Dependencies struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		AddCommissioner: commands.AddCommissionerUseCase{
			Roles:  deps.Roles,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		RemoveCommissioner: commands.RemoveCommissionerUseCase{
			Roles:  deps.Roles,
			Logger: deps.Logger,
		},
		TransferAdmin: commands.TransferAdminUseCase{
			Roles:  deps.Roles,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Queries: queries.RoleQueries{
			Roles: deps.Roles,
		},
	}
}

// NewInMemoryModule seeds the given administrator into an in-memory role
// store. Intended for tests and single-process runs.
func NewInMemoryModule(administrator string, logger *slog.Logger) Module {
	store := memory.NewStore(administrator)
	module := NewModule(Dependencies{
		Roles:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}

package electionledger

import (
	"log/slog"

	"hustings/contexts/election-ops/election-ledger/adapters/memory"
	"hustings/contexts/election-ops/election-ledger/application/commands"
	"hustings/contexts/election-ops/election-ledger/application/queries"
	"hustings/contexts/election-ops/election-ledger/ports"
)

type Module struct {
	Elections  commands.ElectionUseCase
	Candidates commands.CandidateUseCase
	Voters     commands.VoterUseCase
	Ballots    commands.BallotUseCase
	Registry   queries.RegistryQueries
	Results    queries.ResultsQueries
	Store      *memory.Store
}

type Dependencies struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Voters     ports.VoterRepository
	Ballots    ports.BallotApplier
	Roles      ports.RoleDirectory
	Outbox     ports.OutboxWriter
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Elections: commands.ElectionUseCase{
			Elections: deps.Elections,
			Roles:     deps.Roles,
			Outbox:    deps.Outbox,
			IDGen:     deps.IDGen,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Candidates: commands.CandidateUseCase{
			Elections:  deps.Elections,
			Candidates: deps.Candidates,
			Roles:      deps.Roles,
			Outbox:     deps.Outbox,
			IDGen:      deps.IDGen,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		Voters: commands.VoterUseCase{
			Elections: deps.Elections,
			Voters:    deps.Voters,
			Roles:     deps.Roles,
			Outbox:    deps.Outbox,
			IDGen:     deps.IDGen,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Ballots: commands.BallotUseCase{
			Elections:  deps.Elections,
			Candidates: deps.Candidates,
			Voters:     deps.Voters,
			Ballots:    deps.Ballots,
			Outbox:     deps.Outbox,
			IDGen:      deps.IDGen,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		Registry: queries.RegistryQueries{
			Elections:  deps.Elections,
			Candidates: deps.Candidates,
			Voters:     deps.Voters,
		},
		Results: queries.ResultsQueries{
			Elections:  deps.Elections,
			Candidates: deps.Candidates,
		},
	}
}

func NewInMemoryModule(roles ports.RoleDirectory, clock ports.Clock, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Elections:  store,
		Candidates: store,
		Voters:     store,
		Ballots:    store,
		Roles:      roles,
		Outbox:     store,
		IDGen:      store,
		Clock:      clock,
		Logger:     logger,
	})
	module.Store = store
	return module
}

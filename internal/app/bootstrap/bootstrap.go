package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	electionledger "hustings/contexts/election-ops/election-ledger"
	ledgerpostgres "hustings/contexts/election-ops/election-ledger/adapters/postgres"
	ledgerworkers "hustings/contexts/election-ops/election-ledger/application/workers"
	accesscontrol "hustings/contexts/identity-access/access-control"
	accesspostgres "hustings/contexts/identity-access/access-control/adapters/postgres"
	"hustings/internal/platform/config"
	"hustings/internal/platform/db"
	"hustings/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// App bundles the wired modules for embedding into a host process.
type App struct {
	Access accesscontrol.Module
	Ledger electionledger.Module

	cfg        config.Config
	ledgerRepo *ledgerpostgres.Repository
	postgres   *db.Postgres
	logger     *slog.Logger
}

// WorkerApp drives the outbox relay loop on top of a wired App.
type WorkerApp struct {
	app          *App
	outboxRelay  ledgerworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

// Build wires both contexts against postgres, runs migrations and seeds the
// bootstrap administrator. The ledger consults access-control role state
// only through the query service.
func Build() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "app")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.AdminAddress == "" {
		return nil, errors.New("ADMIN_ADDRESS is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accessRepo := accesspostgres.NewRepository(pg.DB, logger)
	if err := accessRepo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	if err := accessRepo.Seed(context.Background(), cfg.AdminAddress); err != nil {
		_ = pg.Close()
		return nil, err
	}
	accessModule := accesscontrol.NewModule(accesscontrol.Dependencies{
		Roles:  accessRepo,
		Clock:  accesspostgres.SystemClock{},
		Logger: logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	if err := ledgerRepo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	ledgerModule := electionledger.NewModule(electionledger.Dependencies{
		Elections:  ledgerRepo,
		Candidates: ledgerRepo,
		Voters:     ledgerRepo,
		Ballots:    ledgerRepo,
		Roles:      accessModule.Queries,
		Outbox:     ledgerRepo,
		IDGen:      ledgerpostgres.UUIDGenerator{},
		Clock:      ledgerpostgres.SystemClock{},
		Logger:     logger,
	})

	return &App{
		Access:     accessModule,
		Ledger:     ledgerModule,
		cfg:        cfg,
		ledgerRepo: ledgerRepo,
		postgres:   pg,
		logger:     logger,
	}, nil
}

func (a *App) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// BuildWorker reuses the App wiring and adds the relay that drains the
// ledger outbox onto the bus. Seeding is idempotent, so the worker sharing
// migration and seed steps with the app process is safe.
func BuildWorker() (*WorkerApp, error) {
	app, err := Build()
	if err != nil {
		return nil, err
	}

	logger := app.logger.With("process", "worker")
	bus, err := messaging.NewKafka(app.cfg.KafkaBrokers, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	return &WorkerApp{
		app: app,
		outboxRelay: ledgerworkers.OutboxRelay{
			Outbox:    app.ledgerRepo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: app.cfg.RelayBatchSize,
			Logger:    logger,
		},
		pollInterval: app.cfg.RelayPollInterval,
		logger:       logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.app != nil {
		return w.app.Close()
	}
	return nil
}

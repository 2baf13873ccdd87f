package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vaultflow/internal/config"
	"github.com/phrazzld/vaultflow/internal/events"
	"github.com/phrazzld/vaultflow/internal/flow"
	"github.com/phrazzld/vaultflow/internal/platform/postgres"
	"github.com/phrazzld/vaultflow/internal/store"
	"github.com/phrazzld/vaultflow/internal/task"
)

// application holds the server's dependencies.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	states  store.SavedStateStore
	manager *flow.Manager
}

// newApplication wires the saved-state backend selected in cfg into a flow
// manager. The caller must call cleanup when done.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.states = postgres.NewPostgresStateStore(db, logger)
	case config.StoreBackendMemory:
		app.states = store.NewMemoryStateStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))

	app.manager = flow.NewManager(task.NewRegistry(logger), app.states, logger, cfg.Flow.MaxActiveFlows)
	app.manager.SetEventEmitter(emitter)

	logger.Info("application initialized",
		"store_backend", cfg.Store.Backend,
		"max_active_flows", cfg.Flow.MaxActiveFlows)
	return app, nil
}

func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
		return
	}
	app.logger.Debug("database connection closed")
}

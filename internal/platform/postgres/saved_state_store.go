package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/store"
)

// PostgresStateStore implements store.SavedStateStore on the
// flow_saved_states table. Snapshots are stored as JSONB objects whose values
// are strings or null.
type PostgresStateStore struct {
	db     store.DBTX
	pool   *sql.DB // nil when bound to a transaction
	logger *slog.Logger
}

// NewPostgresStateStore creates a PostgresStateStore. If logger is nil, a
// default logger will be used.
func NewPostgresStateStore(db *sql.DB, logger *slog.Logger) *PostgresStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStateStore{
		db:     db,
		pool:   db,
		logger: logger.With(slog.String("component", "saved_state_store")),
	}
}

// WithTx returns a store that runs every statement in tx. Its SaveState joins
// tx instead of opening a transaction of its own.
func (s *PostgresStateStore) WithTx(tx *sql.Tx) *PostgresStateStore {
	return &PostgresStateStore{
		db:     tx,
		logger: s.logger,
	}
}

var _ store.SavedStateStore = (*PostgresStateStore)(nil)

const (
	deleteDeeperStatesQuery = `
		DELETE FROM flow_saved_states
		WHERE flow_id = $1 AND depth > $2
	`

	upsertStateQuery = `
		INSERT INTO flow_saved_states (flow_id, depth, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (flow_id, depth)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`

	selectStateQuery = `
		SELECT state
		FROM flow_saved_states
		WHERE flow_id = $1 AND depth = $2
	`

	deleteFlowStatesQuery = `
		DELETE FROM flow_saved_states
		WHERE flow_id = $1
	`
)

// SaveState implements store.SavedStateStore.SaveState. Dropping the deeper
// snapshots and writing the new one happen in one transaction: the store's
// own, or the one it was bound to with WithTx.
func (s *PostgresStateStore) SaveState(ctx context.Context, flowID uuid.UUID, depth int, state *bundle.Bundle) error {
	if depth < 0 {
		return store.NewStoreError("saved_state", "save", "depth must not be negative", store.ErrInvalidEntity)
	}
	if state == nil {
		return store.NewStoreError("saved_state", "save", "state cannot be nil", store.ErrInvalidEntity)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return store.NewStoreError("saved_state", "save", "failed to encode state", err)
	}

	if s.pool == nil {
		err = s.writeState(ctx, flowID, depth, payload)
	} else {
		err = store.RunInTransaction(ctx, s.pool, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).writeState(ctx, flowID, depth, payload)
		})
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save state",
			slog.String("flow_id", flowID.String()),
			slog.Int("depth", depth),
			slog.String("error", err.Error()))
		return store.NewStoreError("saved_state", "save", "transaction failed", MapError(err))
	}

	s.logger.DebugContext(ctx, "state saved",
		slog.String("flow_id", flowID.String()),
		slog.Int("depth", depth),
		slog.Int("keys", state.Len()))
	return nil
}

// writeState drops the snapshots deeper than depth and upserts the one at depth.
func (s *PostgresStateStore) writeState(ctx context.Context, flowID uuid.UUID, depth int, payload []byte) error {
	result, err := s.db.ExecContext(ctx, deleteDeeperStatesQuery, flowID, depth)
	if err != nil {
		return fmt.Errorf("failed to discard deeper states: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		s.logger.DebugContext(ctx, "discarded states of closed screens",
			slog.String("flow_id", flowID.String()),
			slog.Int("depth", depth),
			slog.Int64("discarded", n))
	}

	if _, err := s.db.ExecContext(ctx, upsertStateQuery, flowID, depth, string(payload)); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// LoadState implements store.SavedStateStore.LoadState.
func (s *PostgresStateStore) LoadState(ctx context.Context, flowID uuid.UUID, depth int) (*bundle.Bundle, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectStateQuery, flowID, depth).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: flow %s depth %d", store.ErrStateNotFound, flowID, depth)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load state",
			slog.String("flow_id", flowID.String()),
			slog.Int("depth", depth),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("saved_state", "load", "query failed", MapError(err))
	}

	state := bundle.New()
	if err := json.Unmarshal(payload, state); err != nil {
		return nil, store.NewStoreError("saved_state", "load", "stored state is corrupt", err)
	}
	return state, nil
}

// DeleteFlowStates implements store.SavedStateStore.DeleteFlowStates.
func (s *PostgresStateStore) DeleteFlowStates(ctx context.Context, flowID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, deleteFlowStatesQuery, flowID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete flow states",
			slog.String("flow_id", flowID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("saved_state", "delete", "delete failed", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil {
		s.logger.DebugContext(ctx, "flow states deleted",
			slog.String("flow_id", flowID.String()),
			slog.Int64("deleted", n))
	}
	return nil
}

// Package pglog is a reference logConsole collaborator that appends
// BlockLog rows to Postgres for audit/history. It is a log sink, not
// execution-state persistence: a crashed run leaves no resumable state,
// only a record of what already completed, so wiring this in does not
// reintroduce the "no persistence of partial execution" Non-goal. Grounded
// in the teacher's common/db.DB pgxpool wrapper, narrowed from a
// general-purpose connection pool to one INSERT statement.
package pglog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowforge/workflowengine/internal/types"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS block_logs (
	id          BIGSERIAL PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	block_id    TEXT NOT NULL,
	block_type  TEXT NOT NULL,
	success     BOOLEAN NOT NULL,
	error       TEXT,
	output      JSONB,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	logged_at   TIMESTAMPTZ NOT NULL
)`

const insertSQL = `
INSERT INTO block_logs
	(workflow_id, block_id, block_type, success, error, output, started_at, ended_at, logged_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Sink appends ConsoleEvents to a block_logs table.
type Sink struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool and ensures the block_logs table exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Sink, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, err
	}
	return &Sink{pool: pool}, nil
}

// Emit satisfies types.LogConsoleFunc. It logs its own failure rather than
// panicking: a broken audit sink must never take down a run.
func (s *Sink) Emit(event types.ConsoleEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	outputJSON, err := json.Marshal(event.Log.Output)
	if err != nil {
		outputJSON = []byte("null")
	}

	loggedAt, err := time.Parse(time.RFC3339Nano, event.Timestamp)
	if err != nil {
		loggedAt = event.Log.EndedAt
	}

	if _, err := s.pool.Exec(ctx, insertSQL,
		event.WorkflowID,
		event.Log.BlockID,
		event.Log.BlockType,
		event.Log.Success,
		nullIfEmpty(event.Log.Error),
		outputJSON,
		event.Log.StartedAt,
		event.Log.EndedAt,
		loggedAt,
	); err != nil {
		slog.Warn("block log sink insert failed", "workflow_id", event.WorkflowID, "block_id", event.Log.BlockID, "error", err)
	}
}

// Func returns the types.LogConsoleFunc value for wiring into the executor.
func (s *Sink) Func() types.LogConsoleFunc {
	return s.Emit
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

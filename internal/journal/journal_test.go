package journal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"lumafab/internal/sqlinline"
)

type recordingSQL struct {
	execQueries []string
	rowQueries  []string
	rowArgs     [][]any
}

func (r *recordingSQL) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	r.execQueries = append(r.execQueries, query)
	return pgconn.CommandTag{}, nil
}

func (r *recordingSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	r.rowQueries = append(r.rowQueries, query)
	r.rowArgs = append(r.rowArgs, args)
	return echoRow{args: args}
}

func (r *recordingSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type echoRow struct {
	args []any
}

func (e echoRow) Scan(dest ...any) error {
	if len(dest) == 1 {
		if v, ok := dest[0].(*uuid.UUID); ok {
			if id, ok := e.args[0].(uuid.UUID); ok {
				*v = id
			}
		}
	}
	return nil
}

func TestNilJournalIsNoOp(t *testing.T) {
	var j *Journal
	ctx := context.Background()

	id := j.DesignStarted(ctx, "wish", "prompt", "style", "env")
	if id == uuid.Nil {
		t.Fatal("expected a generated design id even without a journal")
	}
	j.MeshTaskCreated(ctx, id, "task-1")
	j.DesignStatus(ctx, id, "COMPLETE", nil)
	j.OrderMirrored(ctx, "42", "a@b.se", "pending", nil)
}

func TestNewWithoutExecutorReturnsNil(t *testing.T) {
	if j := New(nil, zerolog.Nop()); j != nil {
		t.Fatalf("New(nil) = %v, want nil", j)
	}
}

func TestJournalWrites(t *testing.T) {
	sql := &recordingSQL{}
	j := New(sql, zerolog.Nop())
	ctx := context.Background()

	id := j.DesignStarted(ctx, "wish", "prompt", "organic lattice", "oak side table")
	if id == uuid.Nil {
		t.Fatal("design id missing")
	}
	if len(sql.rowQueries) != 1 || sql.rowQueries[0] != sqlinline.QInsertDesign {
		t.Fatalf("rowQueries = %v", sql.rowQueries)
	}
	if len(sql.rowArgs[0]) != 5 {
		t.Fatalf("insert args = %d, want 5", len(sql.rowArgs[0]))
	}

	j.MeshTaskCreated(ctx, id, "task-1")
	j.DesignStatus(ctx, id, "COMPLETE", map[string]any{"task_id": "task-1"})
	if len(sql.execQueries) != 2 {
		t.Fatalf("execQueries = %v", sql.execQueries)
	}
	if sql.execQueries[0] != sqlinline.QSetDesignMeshTask || sql.execQueries[1] != sqlinline.QSetDesignStatus {
		t.Fatalf("execQueries = %v", sql.execQueries)
	}

	j.OrderMirrored(ctx, "42", "a@b.se", "pending", map[string]any{"style": "organic lattice"})
	if len(sql.rowQueries) != 2 || sql.rowQueries[1] != sqlinline.QInsertOrderMirror {
		t.Fatalf("rowQueries = %v", sql.rowQueries)
	}
}

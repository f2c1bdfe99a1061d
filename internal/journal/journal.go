// Package journal records pipeline progress in Postgres. Every write is
// best-effort: the journal is observability, not a source of truth, so a
// nil journal or a failed insert never interrupts a generation.
package journal

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lumafab/internal/infra"
	"lumafab/internal/sqlinline"
)

type Journal struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
}

func New(sql infra.SQLExecutor, logger zerolog.Logger) *Journal {
	if sql == nil {
		return nil
	}
	return &Journal{sql: sql, logger: logger}
}

// DesignStarted records a new generation and returns its journal id.
func (j *Journal) DesignStarted(ctx context.Context, userPrompt, optimizedPrompt, style, environment string) uuid.UUID {
	id := uuid.New()
	if j == nil {
		return id
	}
	var got uuid.UUID
	err := j.sql.QueryRow(ctx, sqlinline.QInsertDesign,
		id, userPrompt, optimizedPrompt, style, environment,
	).Scan(&got)
	if err != nil {
		j.logger.Warn().Err(err).Str("design_id", id.String()).Msg("journal: design insert failed")
	}
	return id
}

func (j *Journal) MeshTaskCreated(ctx context.Context, designID uuid.UUID, taskID string) {
	if j == nil {
		return
	}
	if _, err := j.sql.Exec(ctx, sqlinline.QSetDesignMeshTask, designID, taskID); err != nil {
		j.logger.Warn().Err(err).Str("design_id", designID.String()).Msg("journal: mesh task update failed")
	}
}

func (j *Journal) DesignStatus(ctx context.Context, designID uuid.UUID, status string, props map[string]any) {
	if j == nil {
		return
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		j.logger.Warn().Err(err).Str("design_id", designID.String()).Msg("journal: properties marshal failed")
		return
	}
	if _, err := j.sql.Exec(ctx, sqlinline.QSetDesignStatus, designID, status, raw); err != nil {
		j.logger.Warn().Err(err).Str("design_id", designID.String()).Msg("journal: status update failed")
	}
}

// OrderMirrored keeps a local copy of an order accepted by the CMS.
func (j *Journal) OrderMirrored(ctx context.Context, directusID, email, status string, details any) {
	if j == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		j.logger.Warn().Err(err).Str("directus_id", directusID).Msg("journal: details marshal failed")
		return
	}
	var id uuid.UUID
	if err := j.sql.QueryRow(ctx, sqlinline.QInsertOrderMirror, directusID, email, status, raw).Scan(&id); err != nil {
		j.logger.Warn().Err(err).Str("directus_id", directusID).Msg("journal: order mirror failed")
	}
}

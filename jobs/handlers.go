package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// search_documents holds one denormalised row per searchable record; the
// reindex job rebuilds the row for whichever entity changed.
var reindexQueries = map[string]string{
	"part": `
		INSERT INTO search_documents (entity, entity_id, body, updated_at)
		SELECT 'part', id, code || ' ' || name || ' ' || COALESCE(description, ''), NOW()
		FROM parts WHERE id = $1
		ON CONFLICT (entity, entity_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	"purchase_order": `
		INSERT INTO search_documents (entity, entity_id, body, updated_at)
		SELECT 'purchase_order', id, number || ' ' || status || ' ' || COALESCE(notes, ''), NOW()
		FROM purchase_orders WHERE id = $1
		ON CONFLICT (entity, entity_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
}

// NewSearchReindexHandler returns the handler for search reindex tasks.
func NewSearchReindexHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SearchReindexPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		query, ok := reindexQueries[payload.Entity]
		if !ok {
			logger.Warn("reindex for unknown entity", slog.String("entity", payload.Entity))
			return asynq.SkipRetry
		}
		if _, err := pool.Exec(ctx, query, payload.ID); err != nil {
			return err
		}
		logger.Info("search document refreshed", slog.String("entity", payload.Entity), slog.Int64("id", payload.ID))
		return nil
	}
}

// NewAuditPurgeHandler returns the handler for audit purge tasks.
func NewAuditPurgeHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetainDays <= 0 {
			payload.RetainDays = 365
		}
		tag, err := pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < NOW() - ($1 || ' days')::interval`, payload.RetainDays)
		if err != nil {
			return err
		}
		logger.Info("audit logs purged", slog.Int64("removed", tag.RowsAffected()), slog.Int("retain_days", payload.RetainDays))
		return nil
	}
}

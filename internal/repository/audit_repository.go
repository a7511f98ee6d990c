package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// AuditRepository stores re-triage call outcomes.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository. A nil pool yields a repository that discards entries.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	if pool == nil {
		return discardAudit{}
	}
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO retriage_audit (request_id, source, model, resident_priority, resident_category,
            ai_priority, ai_category, fallbacks, latency_ms, error)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	fallbacks := entry.Fallbacks
	if fallbacks == nil {
		fallbacks = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.RequestID,
		entry.Source,
		entry.Model,
		entry.ResidentPriority,
		entry.ResidentCategory,
		entry.AIPriority,
		entry.AICategory,
		fallbacks,
		entry.LatencyMS,
		entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, request_id, source, model, resident_priority, resident_category,
               ai_priority, ai_category, fallbacks, latency_ms, error, created_at
        FROM retriage_audit ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Source,
			&entry.Model,
			&entry.ResidentPriority,
			&entry.ResidentCategory,
			&entry.AIPriority,
			&entry.AICategory,
			&entry.Fallbacks,
			&entry.LatencyMS,
			&entry.Error,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

type discardAudit struct{}

func (discardAudit) Create(context.Context, *domain.AuditEntry) error { return nil }

func (discardAudit) ListRecent(context.Context, int) ([]domain.AuditEntry, error) {
	return []domain.AuditEntry{}, nil
}

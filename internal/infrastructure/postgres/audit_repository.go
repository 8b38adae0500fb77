package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/audit"
)

// AuditRepository implements audit.Repository. Entries are append-only;
// there is no update or delete path.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO approval_history
		(entry_id, request_id, action, performed_by, performed_at, level, comments, previous_status, new_status, metadata, signature)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, e.EntryID, e.RequestID, e.Action, e.PerformedBy, e.PerformedAt, e.Level, e.Comments, e.PreviousStatus, e.NewStatus, e.Metadata, e.Signature)
	return err
}

func (r *AuditRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*audit.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, request_id, action, performed_by, performed_at, level, comments, previous_status, new_status, metadata, signature
		FROM approval_history WHERE request_id=$1 ORDER BY performed_at ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *AuditRepository) List(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	query := `SELECT id, entry_id, request_id, action, performed_by, performed_at, level, comments, previous_status, new_status, metadata, signature FROM approval_history`
	args := []interface{}{}
	idx := 1
	if filter.RequestID != nil {
		query += addWhere(query) + " request_id=$" + itoa(idx)
		args = append(args, *filter.RequestID)
		idx++
	}
	if filter.Action != nil {
		query += addWhere(query) + " action=$" + itoa(idx)
		args = append(args, *filter.Action)
		idx++
	}
	if filter.PerformedBy != nil {
		query += addWhere(query) + " performed_by=$" + itoa(idx)
		args = append(args, *filter.PerformedBy)
		idx++
	}
	if filter.Since != nil {
		query += addWhere(query) + " performed_at >= $" + itoa(idx)
		args = append(args, *filter.Since)
		idx++
	}
	if filter.Until != nil {
		query += addWhere(query) + " performed_at <= $" + itoa(idx)
		args = append(args, *filter.Until)
		idx++
	}
	query += " ORDER BY performed_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.EntryID, &e.RequestID, &e.Action, &e.PerformedBy, &e.PerformedAt, &e.Level, &e.Comments, &e.PreviousStatus, &e.NewStatus, &e.Metadata, &e.Signature); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

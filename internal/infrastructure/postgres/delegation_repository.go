package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/delegation"
)

// DelegationRepository implements delegation.Repository.
type DelegationRepository struct {
	pool *pgxpool.Pool
}

func NewDelegationRepository(pool *pgxpool.Pool) *DelegationRepository {
	return &DelegationRepository{pool: pool}
}

func (r *DelegationRepository) Create(ctx context.Context, d *delegation.Request) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO delegation_requests
		(delegation_id, request_id, level, from_staff_id, to_staff_id, to_staff_name, reason, status, requested_at, responded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, d.DelegationID, d.RequestID, d.Level, d.FromStaffID, d.ToStaffID, d.ToStaffName, d.Reason, d.Status, d.RequestedAt, d.RespondedAt)
	return err
}

func (r *DelegationRepository) GetByID(ctx context.Context, delegationID uuid.UUID) (*delegation.Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, delegation_id, request_id, level, from_staff_id, to_staff_id, to_staff_name, reason, status, requested_at, responded_at
		FROM delegation_requests WHERE delegation_id=$1
	`, delegationID)
	return scanDelegation(row)
}

func (r *DelegationRepository) Update(ctx context.Context, d *delegation.Request) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE delegation_requests SET status=$1, responded_at=$2 WHERE delegation_id=$3
	`, d.Status, d.RespondedAt, d.DelegationID)
	return err
}

func (r *DelegationRepository) List(ctx context.Context, filter delegation.Filter, limit, offset int) ([]*delegation.Request, error) {
	query := `SELECT id, delegation_id, request_id, level, from_staff_id, to_staff_id, to_staff_name, reason, status, requested_at, responded_at FROM delegation_requests`
	args := []interface{}{}
	idx := 1
	if filter.RequestID != nil {
		query += addWhere(query) + " request_id=$" + itoa(idx)
		args = append(args, *filter.RequestID)
		idx++
	}
	if filter.FromStaffID != nil {
		query += addWhere(query) + " from_staff_id=$" + itoa(idx)
		args = append(args, *filter.FromStaffID)
		idx++
	}
	if filter.ToStaffID != nil {
		query += addWhere(query) + " to_staff_id=$" + itoa(idx)
		args = append(args, *filter.ToStaffID)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	query += " ORDER BY requested_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*delegation.Request
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, d)
	}
	return requests, rows.Err()
}

func scanDelegation(row pgx.Row) (*delegation.Request, error) {
	var d delegation.Request
	err := row.Scan(&d.ID, &d.DelegationID, &d.RequestID, &d.Level, &d.FromStaffID, &d.ToStaffID, &d.ToStaffName, &d.Reason, &d.Status, &d.RequestedAt, &d.RespondedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

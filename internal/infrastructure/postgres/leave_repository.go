package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/leave"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// LeaveRepository implements leave.Repository. Approval levels are stored
// as JSONB; the version column backs the optimistic guard.
type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) error {
	levels, err := json.Marshal(req.ApprovalLevels)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err = r.pool.Exec(ctx, `
		INSERT INTO leave_requests
		(request_id, staff_id, staff_name, unit, leave_type, start_date, end_date, days, reason, status, workflow_name, approval_levels, version, submitted_at, decided_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, req.RequestID, req.StaffID, req.StaffName, req.Unit, req.LeaveType, req.StartDate, req.EndDate, req.Days, req.Reason, req.Status, req.WorkflowName, levels, req.Version, req.SubmittedAt, req.DecidedAt, req.CreatedAt, req.UpdatedAt)
	return err
}

func (r *LeaveRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*leave.Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, request_id, staff_id, staff_name, unit, leave_type, start_date, end_date, days, reason, status, workflow_name, approval_levels, version, submitted_at, decided_at, created_at, updated_at
		FROM leave_requests WHERE request_id=$1
	`, requestID)
	return scanLeaveRequest(row)
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.Filter, limit, offset int) ([]*leave.Request, error) {
	query := `SELECT id, request_id, staff_id, staff_name, unit, leave_type, start_date, end_date, days, reason, status, workflow_name, approval_levels, version, submitted_at, decided_at, created_at, updated_at FROM leave_requests`
	args := []interface{}{}
	idx := 1
	if filter.StaffID != nil {
		query += addWhere(query) + " staff_id=$" + itoa(idx)
		args = append(args, *filter.StaffID)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.LeaveType != nil {
		query += addWhere(query) + " leave_type=$" + itoa(idx)
		args = append(args, *filter.LeaveType)
		idx++
	}
	if filter.Unit != nil {
		query += addWhere(query) + " unit=$" + itoa(idx)
		args = append(args, *filter.Unit)
		idx++
	}
	query += " ORDER BY submitted_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *LeaveRepository) ListPending(ctx context.Context, limit int) ([]*leave.Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, request_id, staff_id, staff_name, unit, leave_type, start_date, end_date, days, reason, status, workflow_name, approval_levels, version, submitted_at, decided_at, created_at, updated_at
		FROM leave_requests WHERE status=$1 ORDER BY submitted_at ASC LIMIT $2
	`, leave.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Update persists the request only when the stored version matches
// expectedVersion, incrementing it on success.
func (r *LeaveRepository) Update(ctx context.Context, req *leave.Request, expectedVersion int) error {
	levels, err := json.Marshal(req.ApprovalLevels)
	if err != nil {
		return err
	}
	req.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE leave_requests
		SET status=$1, approval_levels=$2, decided_at=$3, version=version+1, updated_at=$4
		WHERE request_id=$5 AND version=$6
	`, req.Status, levels, req.DecidedAt, req.UpdatedAt, req.RequestID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrVersionConflict
	}
	req.Version = expectedVersion + 1
	return nil
}

func scanLeaveRequest(row pgx.Row) (*leave.Request, error) {
	var req leave.Request
	var levels []byte
	err := row.Scan(&req.ID, &req.RequestID, &req.StaffID, &req.StaffName, &req.Unit, &req.LeaveType, &req.StartDate, &req.EndDate, &req.Days, &req.Reason, &req.Status, &req.WorkflowName, &levels, &req.Version, &req.SubmittedAt, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(levels) > 0 {
		if err := json.Unmarshal(levels, &req.ApprovalLevels); err != nil {
			return nil, err
		}
	} else {
		req.ApprovalLevels = []workflow.ApprovalLevel{}
	}
	return &req, nil
}

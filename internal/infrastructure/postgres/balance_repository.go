package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/leave"
)

// BalanceRepository implements leave.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

func (r *BalanceRepository) Get(ctx context.Context, staffID uuid.UUID, leaveType leave.Type, year int) (*leave.Balance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, staff_id, leave_type, year, entitlement, used, pending, updated_at
		FROM leave_balances WHERE staff_id=$1 AND leave_type=$2 AND year=$3
	`, staffID, leaveType, year)
	return scanBalance(row)
}

func (r *BalanceRepository) ListByStaff(ctx context.Context, staffID uuid.UUID, year int) ([]*leave.Balance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, leave_type, year, entitlement, used, pending, updated_at
		FROM leave_balances WHERE staff_id=$1 AND year=$2 ORDER BY leave_type ASC
	`, staffID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []*leave.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *BalanceRepository) Upsert(ctx context.Context, b *leave.Balance) error {
	b.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leave_balances (staff_id, leave_type, year, entitlement, used, pending, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (staff_id, leave_type, year)
		DO UPDATE SET entitlement=EXCLUDED.entitlement, used=EXCLUDED.used, pending=EXCLUDED.pending, updated_at=EXCLUDED.updated_at
	`, b.StaffID, b.LeaveType, b.Year, b.Entitlement, b.Used, b.Pending, b.UpdatedAt)
	return err
}

func scanBalance(row pgx.Row) (*leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(&b.ID, &b.StaffID, &b.LeaveType, &b.Year, &b.Entitlement, &b.Used, &b.Pending, &b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

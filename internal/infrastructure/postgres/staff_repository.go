package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// StaffRepository implements staff.Repository.
type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func (r *StaffRepository) Create(ctx context.Context, s *staff.Staff) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff
		(staff_id, staff_number, first_name, last_name, email, role, unit, directorate, grade, supervisor_id, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, s.StaffID, s.StaffNumber, s.FirstName, s.LastName, s.Email, s.Role, s.Unit, s.Directorate, s.Grade, s.SupervisorID, s.Status, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *StaffRepository) Update(ctx context.Context, s *staff.Staff) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET first_name=$1, last_name=$2, email=$3, role=$4, unit=$5, directorate=$6, grade=$7, supervisor_id=$8, status=$9, updated_at=$10
		WHERE staff_id=$11
	`, s.FirstName, s.LastName, s.Email, s.Role, s.Unit, s.Directorate, s.Grade, s.SupervisorID, s.Status, s.UpdatedAt, s.StaffID)
	return err
}

func (r *StaffRepository) GetByID(ctx context.Context, staffID uuid.UUID) (*staff.Staff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, staff_id, staff_number, first_name, last_name, email, role, unit, directorate, grade, supervisor_id, status, created_at, updated_at
		FROM staff WHERE staff_id=$1
	`, staffID)
	return scanStaff(row)
}

func (r *StaffRepository) GetByStaffNumber(ctx context.Context, staffNumber string) (*staff.Staff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, staff_id, staff_number, first_name, last_name, email, role, unit, directorate, grade, supervisor_id, status, created_at, updated_at
		FROM staff WHERE staff_number=$1
	`, staffNumber)
	return scanStaff(row)
}

func (r *StaffRepository) List(ctx context.Context, filter staff.Filter, limit, offset int) ([]*staff.Staff, error) {
	query := `SELECT id, staff_id, staff_number, first_name, last_name, email, role, unit, directorate, grade, supervisor_id, status, created_at, updated_at FROM staff`
	args := []interface{}{}
	idx := 1
	if filter.Role != nil {
		query += addWhere(query) + " role=$" + itoa(idx)
		args = append(args, *filter.Role)
		idx++
	}
	if filter.Unit != nil {
		query += addWhere(query) + " unit=$" + itoa(idx)
		args = append(args, *filter.Unit)
		idx++
	}
	if filter.Directorate != nil {
		query += addWhere(query) + " directorate=$" + itoa(idx)
		args = append(args, *filter.Directorate)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	query += " ORDER BY staff_number ASC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []*staff.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, s)
	}
	return members, rows.Err()
}

func scanStaff(row pgx.Row) (*staff.Staff, error) {
	var s staff.Staff
	err := row.Scan(&s.ID, &s.StaffID, &s.StaffNumber, &s.FirstName, &s.LastName, &s.Email, &s.Role, &s.Unit, &s.Directorate, &s.Grade, &s.SupervisorID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

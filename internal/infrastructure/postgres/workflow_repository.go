package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// WorkflowRepository implements workflow.Repository.
type WorkflowRepository struct {
	pool *pgxpool.Pool
}

func NewWorkflowRepository(pool *pgxpool.Pool) *WorkflowRepository {
	return &WorkflowRepository{pool: pool}
}

func (r *WorkflowRepository) Create(ctx context.Context, def *workflow.Definition) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO workflow_definitions
		(workflow_id, name, version, description, status, priority, applies_when, template, created_at, created_by, updated_at, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, def.WorkflowID, def.Name, def.Version, def.Description, def.Status, def.Priority, def.AppliesWhen, def.Template, def.CreatedAt, def.CreatedBy, def.UpdatedAt, def.UpdatedBy)
	return err
}

func (r *WorkflowRepository) GetByID(ctx context.Context, workflowID uuid.UUID) (*workflow.Definition, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, workflow_id, name, version, description, status, priority, applies_when, template, created_at, created_by, updated_at, updated_by
		FROM workflow_definitions WHERE workflow_id=$1 ORDER BY version DESC LIMIT 1
	`, workflowID)
	return scanDefinition(row)
}

func (r *WorkflowRepository) GetByName(ctx context.Context, name string) (*workflow.Definition, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, workflow_id, name, version, description, status, priority, applies_when, template, created_at, created_by, updated_at, updated_by
		FROM workflow_definitions WHERE name=$1 ORDER BY version DESC LIMIT 1
	`, name)
	return scanDefinition(row)
}

func (r *WorkflowRepository) ListActive(ctx context.Context) ([]*workflow.Definition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (workflow_id) id, workflow_id, name, version, description, status, priority, applies_when, template, created_at, created_by, updated_at, updated_by
		FROM workflow_definitions WHERE status=$1 ORDER BY workflow_id, version DESC
	`, workflow.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDefinitions(rows)
}

func (r *WorkflowRepository) List(ctx context.Context, limit, offset int) ([]*workflow.Definition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, workflow_id, name, version, description, status, priority, applies_when, template, created_at, created_by, updated_at, updated_by
		FROM workflow_definitions ORDER BY name ASC, version DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDefinitions(rows)
}

func (r *WorkflowRepository) UpdateStatus(ctx context.Context, workflowID uuid.UUID, status workflow.Status, updatedBy *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE workflow_definitions SET status=$1, updated_at=$2, updated_by=$3 WHERE workflow_id=$4
	`, status, time.Now().UTC(), updatedBy, workflowID)
	return err
}

func collectDefinitions(rows pgx.Rows) ([]*workflow.Definition, error) {
	var defs []*workflow.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func scanDefinition(row pgx.Row) (*workflow.Definition, error) {
	var def workflow.Definition
	err := row.Scan(&def.ID, &def.WorkflowID, &def.Name, &def.Version, &def.Description, &def.Status, &def.Priority, &def.AppliesWhen, &def.Template, &def.CreatedAt, &def.CreatedBy, &def.UpdatedAt, &def.UpdatedBy)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

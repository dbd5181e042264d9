package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/timetable-api/internal/models"
)

// ScheduleGroupRepository persists versioned generation runs.
type ScheduleGroupRepository struct {
	db *sqlx.DB
}

// NewScheduleGroupRepository constructs repository.
func NewScheduleGroupRepository(db *sqlx.DB) *ScheduleGroupRepository {
	return &ScheduleGroupRepository{db: db}
}

func (r *ScheduleGroupRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new schedule group. Groups are immutable once created.
func (r *ScheduleGroupRepository) Create(ctx context.Context, exec sqlx.ExtContext, group *models.ScheduleGroup) error {
	if group == nil {
		return fmt.Errorf("group payload is nil")
	}
	if group.Department == "" || group.SchoolYear == "" || group.Semester == "" {
		return fmt.Errorf("department, school_year and semester are required")
	}
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO schedule_groups (id, department, school_year, semester, created_at)
VALUES (:id, :department, :school_year, :semester, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, group); err != nil {
		return fmt.Errorf("insert schedule group: %w", err)
	}
	return nil
}

// FindByID loads a group by its identifier.
func (r *ScheduleGroupRepository) FindByID(ctx context.Context, id string) (*models.ScheduleGroup, error) {
	const query = `SELECT id, department, school_year, semester, created_at FROM schedule_groups WHERE id = $1`
	var group models.ScheduleGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByTerm returns all group versions for a department/term, newest first.
func (r *ScheduleGroupRepository) ListByTerm(ctx context.Context, department, schoolYear, semester string) ([]models.ScheduleGroup, error) {
	const query = `SELECT id, department, school_year, semester, created_at
FROM schedule_groups WHERE department = $1 AND school_year = $2 AND semester = $3 ORDER BY created_at DESC`
	var groups []models.ScheduleGroup
	if err := r.db.SelectContext(ctx, &groups, query, department, schoolYear, semester); err != nil {
		return nil, fmt.Errorf("list schedule groups: %w", err)
	}
	return groups, nil
}

// Delete removes a group along with its entries and meetings (FK cascade).
func (r *ScheduleGroupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule group: %w", err)
	}
	return nil
}

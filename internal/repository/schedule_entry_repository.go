package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/timetable-api/internal/models"
)

// ScheduleEntryRepository manages (subject, section) entries within a group.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository constructs repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

func (r *ScheduleEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindOrCreate returns the entry for (group, subject, section), creating it
// on first use. Additional meetings for the same triple reuse the entry.
func (r *ScheduleEntryRepository) FindOrCreate(ctx context.Context, exec sqlx.ExtContext, groupID, subjectID, sectionID string) (*models.ScheduleEntry, error) {
	if groupID == "" || subjectID == "" || sectionID == "" {
		return nil, fmt.Errorf("group_id, subject_id and section_id are required")
	}
	target := r.exec(exec)

	entry := &models.ScheduleEntry{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		SubjectID: subjectID,
		SectionID: sectionID,
		Status:    models.ScheduleEntryStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	const insertQuery = `
INSERT INTO schedule_entries (id, group_id, subject_id, section_id, status, created_at)
VALUES (:id, :group_id, :subject_id, :section_id, :status, :created_at)
ON CONFLICT (group_id, subject_id, section_id) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, entry); err != nil {
		return nil, fmt.Errorf("insert schedule entry: %w", err)
	}

	const selectQuery = `SELECT id, group_id, subject_id, section_id, status, created_at
FROM schedule_entries WHERE group_id = $1 AND subject_id = $2 AND section_id = $3`
	var existing models.ScheduleEntry
	if err := sqlx.GetContext(ctx, target, &existing, selectQuery, groupID, subjectID, sectionID); err != nil {
		return nil, fmt.Errorf("load schedule entry: %w", err)
	}
	return &existing, nil
}

// FindByID loads one entry.
func (r *ScheduleEntryRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	const query = `SELECT id, group_id, subject_id, section_id, status, created_at FROM schedule_entries WHERE id = $1`
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByGroup returns all entries of a group.
func (r *ScheduleEntryRepository) ListByGroup(ctx context.Context, groupID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, group_id, subject_id, section_id, status, created_at
FROM schedule_entries WHERE group_id = $1 ORDER BY created_at ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, groupID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// Delete removes an entry. Used when an allocation attempt leaves it with
// zero meetings so no orphan records survive a run.
func (r *ScheduleEntryRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}

// CountMeetings returns the number of meetings currently owned by an entry.
func (r *ScheduleEntryRepository) CountMeetings(ctx context.Context, exec sqlx.ExtContext, entryID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, `SELECT COUNT(*) FROM schedule_meetings WHERE entry_id = $1`, entryID); err != nil {
		return 0, fmt.Errorf("count entry meetings: %w", err)
	}
	return count, nil
}

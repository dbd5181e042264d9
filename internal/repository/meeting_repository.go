package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/timetable-api/internal/models"
)

// MeetingRepository persists schedule meetings. Writes are idempotent on the
// (entry_id, day, start_time, end_time) uniqueness key so a retried batch
// never creates duplicates.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const meetingColumns = `id, entry_id, instructor_id, room_id, day, start_time, end_time, meeting_type, created_at, updated_at`

const meetingDetailQuery = `
SELECT m.id AS meeting_id, m.entry_id, e.group_id, e.subject_id, e.section_id,
       m.instructor_id, m.room_id, m.day, m.start_time, m.end_time, m.meeting_type
FROM schedule_meetings m
JOIN schedule_entries e ON e.id = m.entry_id`

// InsertIgnore stores a meeting, ignoring duplicates on the uniqueness key.
// The returned flag reports whether a row was actually written.
func (r *MeetingRepository) InsertIgnore(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) (bool, error) {
	if meeting == nil {
		return false, fmt.Errorf("meeting payload is nil")
	}
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now
	}
	meeting.UpdatedAt = now

	const query = `
INSERT INTO schedule_meetings (id, entry_id, instructor_id, room_id, day, start_time, end_time, meeting_type, created_at, updated_at)
VALUES (:id, :entry_id, :instructor_id, :room_id, :day, :start_time, :end_time, :meeting_type, :created_at, :updated_at)
ON CONFLICT (entry_id, day, start_time, end_time) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, meeting)
	if err != nil {
		return false, fmt.Errorf("insert schedule meeting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("schedule meeting rows affected: %w", err)
	}
	return affected > 0, nil
}

// FindByID loads one meeting.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.ScheduleMeeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_meetings WHERE id = $1`, meetingColumns)
	var meeting models.ScheduleMeeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// FindDetailByID loads one meeting joined with its owning entry.
func (r *MeetingRepository) FindDetailByID(ctx context.Context, id string) (*models.MeetingDetail, error) {
	query := meetingDetailQuery + ` WHERE m.id = $1`
	var detail models.MeetingDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByEntry returns meetings under one entry ordered by day and start.
func (r *MeetingRepository) ListByEntry(ctx context.Context, entryID string) ([]models.ScheduleMeeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_meetings WHERE entry_id = $1 ORDER BY day ASC, start_time ASC`, meetingColumns)
	var meetings []models.ScheduleMeeting
	if err := r.db.SelectContext(ctx, &meetings, query, entryID); err != nil {
		return nil, fmt.Errorf("list meetings by entry: %w", err)
	}
	return meetings, nil
}

// ListDetailsByGroup returns the joined read model for one group. This is the
// snapshot the conflict engine, the repairer and the edit validator run on.
func (r *MeetingRepository) ListDetailsByGroup(ctx context.Context, groupID string) ([]models.MeetingDetail, error) {
	query := meetingDetailQuery + ` WHERE e.group_id = $1 ORDER BY m.day ASC, m.start_time ASC`
	var details []models.MeetingDetail
	if err := r.db.SelectContext(ctx, &details, query, groupID); err != nil {
		return nil, fmt.Errorf("list meeting details by group: %w", err)
	}
	return details, nil
}

// Update rewrites the mutable fields of a meeting.
func (r *MeetingRepository) Update(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) error {
	if meeting == nil || meeting.ID == "" {
		return fmt.Errorf("meeting id is required")
	}
	meeting.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE schedule_meetings
SET instructor_id = :instructor_id, room_id = :room_id, day = :day,
    start_time = :start_time, end_time = :end_time, meeting_type = :meeting_type,
    updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, meeting); err != nil {
		return fmt.Errorf("update schedule meeting: %w", err)
	}
	return nil
}

// Delete removes a meeting by id.
func (r *MeetingRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_meetings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule meeting: %w", err)
	}
	return nil
}

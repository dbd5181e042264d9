package models

import "time"

// ScheduleEntryStatus represents lifecycle phases for a placed entry.
type ScheduleEntryStatus string

const (
	ScheduleEntryStatusActive  ScheduleEntryStatus = "ACTIVE"
	ScheduleEntryStatusPartial ScheduleEntryStatus = "PARTIAL"
)

// Meeting types distinguish lecture and laboratory sessions.
const (
	MeetingTypeLecture = "LECTURE"
	MeetingTypeLab     = "LAB"
)

// ScheduleGroup is one versioned generation run for a department and term.
// Groups are immutable once created; several may coexist for the same
// department/term so drafts can be compared.
type ScheduleGroup struct {
	ID         string    `db:"id" json:"id"`
	Department string    `db:"department" json:"department"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	Semester   string    `db:"semester" json:"semester"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScheduleEntry is one (subject, section) assignment within a group. It owns
// one or more meetings and is removed if an allocation attempt leaves it
// with none.
type ScheduleEntry struct {
	ID        string              `db:"id" json:"id"`
	GroupID   string              `db:"group_id" json:"group_id"`
	SubjectID string              `db:"subject_id" json:"subject_id"`
	SectionID string              `db:"section_id" json:"section_id"`
	Status    ScheduleEntryStatus `db:"status" json:"status"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// ScheduleMeeting is one atomic (day, time, room, instructor) occurrence
// under an entry. Day holds a single canonical weekday; multi-day sessions
// are stored as sibling meetings under the same entry.
type ScheduleMeeting struct {
	ID           string    `db:"id" json:"id"`
	EntryID      string    `db:"entry_id" json:"entry_id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	Day          string    `db:"day" json:"day"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	MeetingType  string    `db:"meeting_type" json:"meeting_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MeetingDetail is the denormalised read model the conflict engine works on:
// a meeting joined with its entry so subject, section and group are at hand.
type MeetingDetail struct {
	MeetingID    string `db:"meeting_id" json:"meeting_id"`
	EntryID      string `db:"entry_id" json:"entry_id"`
	GroupID      string `db:"group_id" json:"group_id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
	SectionID    string `db:"section_id" json:"section_id"`
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	RoomID       string `db:"room_id" json:"room_id"`
	Day          string `db:"day" json:"day"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
	MeetingType  string `db:"meeting_type" json:"meeting_type"`
}

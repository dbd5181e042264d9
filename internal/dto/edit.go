package dto

import "github.com/acadsync/timetable-api/internal/models"

// Conflict kinds returned by the edit validator. Time-rule kinds short-circuit
// resource-conflict detection.
const (
	ConflictKindStartTime  = "start_time"
	ConflictKindLunch      = "lunch"
	ConflictKindCutoff     = "cutoff"
	ConflictKindDuration   = "duration"
	ConflictKindInstructor = "instructor"
	ConflictKindRoom       = "room"
	ConflictKindSection    = "section"
)

// Edit types accepted by the suggester.
const (
	EditTypeTime = "time"
	EditTypeDay  = "day"
	EditTypeRoom = "room"
)

// ValidateEditRequest proposes one change to an existing meeting or entry.
// Context absent from the payload is resolved from the referenced meeting.
type ValidateEditRequest struct {
	GroupID      string `json:"groupId" validate:"required"`
	MeetingID    string `json:"meetingId"`
	EntryID      string `json:"entryId"`
	Day          string `json:"day" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	InstructorID string `json:"instructorId"`
	RoomID       string `json:"roomId"`
	SectionID    string `json:"sectionId"`
}

// EditConflict is one violation found by the validator.
type EditConflict struct {
	Kind    string                `json:"kind"`
	Message string                `json:"message"`
	Meeting *models.MeetingDetail `json:"meeting,omitempty"`
}

// ValidateEditResponse is the structured validator result; business-rule
// failures are reported here, never as request-level errors.
type ValidateEditResponse struct {
	OK        bool           `json:"ok"`
	Conflicts []EditConflict `json:"conflicts"`
	Details   map[string]any `json:"details,omitempty"`
}

// UpdateMeetingRequest commits an edit after re-validation.
type UpdateMeetingRequest struct {
	Day          string `json:"day" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	RoomID       string `json:"roomId"`
	InstructorID string `json:"instructorId"`
}

// UpdateMeetingResponse mirrors the validator contract on rejection.
type UpdateMeetingResponse struct {
	OK        bool                    `json:"ok"`
	Meeting   *models.ScheduleMeeting `json:"meeting,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Conflicts []EditConflict          `json:"conflicts,omitempty"`
}

// SuggestRequest asks for ranked alternative slots around an edit.
type SuggestRequest struct {
	GroupID         string `json:"groupId" validate:"required"`
	InstructorID    string `json:"instructorId"`
	RoomID          string `json:"roomId"`
	SectionID       string `json:"sectionId"`
	PreferredDay    string `json:"preferredDay"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=30,max=540"`
	MeetingID       string `json:"meetingId"`
	EditType        string `json:"editType" validate:"omitempty,oneof=time day room"`
}

// Suggestion is one viable alternative slot. Day carries the combined-day
// label when the suggestion covers a joint session.
type Suggestion struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	RoomID    string `json:"roomId,omitempty"`
	RoomName  string `json:"roomName,omitempty"`
}

// SuggestResponse lists viable alternatives.
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
}

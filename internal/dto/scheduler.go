package dto

// InstructorRow is one requested course load line: which subject a given
// instructor teaches to a section, on which days and time window. Days may
// hold a combined-day string such as "MonThu".
type InstructorRow struct {
	InstructorName     string `json:"instructorName" validate:"required"`
	EmploymentType     string `json:"employmentType"`
	SubjectCode        string `json:"subjectCode" validate:"required"`
	SubjectDescription string `json:"subjectDescription"`
	Units              int    `json:"units" validate:"required,min=1,max=9"`
	Department         string `json:"department" validate:"required"`
	YearLevel          string `json:"yearLevel" validate:"required"`
	Block              string `json:"block" validate:"required"`
	Days               string `json:"days" validate:"required"`
	StartTime          string `json:"startTime" validate:"required"`
	EndTime            string `json:"endTime" validate:"required"`
	PreferredRoom      string `json:"preferredRoom"`
	RequiresLab        bool   `json:"requiresLab"`
	EstimatedStudents  int    `json:"estimatedStudents"`
	MeetingType        string `json:"meetingType"`
}

// GenerateScheduleRequest starts one generation run producing a new group.
type GenerateScheduleRequest struct {
	Department string          `json:"department" validate:"required"`
	SchoolYear string          `json:"schoolYear" validate:"required"`
	Semester   string          `json:"semester" validate:"required"`
	Rows       []InstructorRow `json:"rows" validate:"required,min=1,dive"`
}

// PlacedMeeting summarises one persisted meeting for the generate response.
type PlacedMeeting struct {
	EntryID      string `json:"entryId"`
	SubjectCode  string `json:"subjectCode"`
	Section      string `json:"section"`
	InstructorID string `json:"instructorId"`
	RoomID       string `json:"roomId"`
	Day          string `json:"day"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Relocated    bool   `json:"relocated,omitempty"`
}

// SkippedMeeting records a placement the engine had to give up on.
type SkippedMeeting struct {
	SubjectCode string `json:"subjectCode"`
	Section     string `json:"section"`
	Day         string `json:"day"`
	Reason      string `json:"reason"`
}

// GenerationStats aggregates run counters.
type GenerationStats struct {
	Requested      int  `json:"requested"`
	Placed         int  `json:"placed"`
	Relocated      int  `json:"relocated"`
	Skipped        int  `json:"skipped"`
	Evictions      int  `json:"evictions"`
	EntriesDropped int  `json:"entriesDropped"`
	PartialTimeout bool `json:"partialTimeout"`
}

// GenerateScheduleResponse reports the run outcome.
type GenerateScheduleResponse struct {
	Success   bool             `json:"success"`
	GroupID   string           `json:"groupId"`
	Algorithm string           `json:"algorithm"`
	Schedules []PlacedMeeting  `json:"schedules"`
	Skipped   []SkippedMeeting `json:"skipped,omitempty"`
	Stats     GenerationStats  `json:"stats"`
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type editMeetingRepository interface {
	ListDetailsByGroup(ctx context.Context, groupID string) ([]models.MeetingDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.MeetingDetail, error)
	Update(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) error
}

type editSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type editInstructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type editRoomReader interface {
	ListActive(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type groupCacheInvalidator interface {
	InvalidateGroup(ctx context.Context, groupID string) error
}

// Suggestion caps: single meetings get a short list, joint-session searches
// scan the one day set and may return more.
const (
	maxSuggestions      = 10
	maxJointSuggestions = 30
)

// EditService backs the interactive editing surface: dry-run validation of a
// proposed change, ranked alternative-slot suggestions, and the commit path
// that re-validates before persisting.
type EditService struct {
	meetings    editMeetingRepository
	subjects    editSubjectReader
	instructors editInstructorReader
	rooms       editRoomReader
	cache       groupCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

func NewEditService(
	meetings editMeetingRepository,
	subjects editSubjectReader,
	instructors editInstructorReader,
	rooms editRoomReader,
	cache groupCacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *EditService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditService{
		meetings:    meetings,
		subjects:    subjects,
		instructors: instructors,
		rooms:       rooms,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// editContext is the resolved identity set a validation runs against.
type editContext struct {
	MeetingID      string
	EntryID        string
	SubjectID      string
	InstructorID   string
	RoomID         string
	SectionID      string
	Units          int
	EmploymentType string
	JointDays      []string

	// Current slot of the referenced meeting; suggestions never re-offer it.
	CurrentDay    string
	CurrentStart  int
	CurrentRoomID string
}

// ValidateEdit dry-runs a proposed meeting change. Rule violations come back
// in the response body with OK=false; only malformed requests error.
func (s *EditService) ValidateEdit(ctx context.Context, req dto.ValidateEditRequest) (*dto.ValidateEditResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload")
	}

	meetings, err := s.meetings.ListDetailsByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group meetings")
	}

	ec, err := s.resolveContext(ctx, meetings, req)
	if err != nil {
		return nil, err
	}

	conflicts := s.check(meetings, ec, req.Day, req.StartTime, req.EndTime)
	resp := &dto.ValidateEditResponse{
		OK:        len(conflicts) == 0,
		Conflicts: conflicts,
	}
	if !resp.OK {
		resp.Details = map[string]any{
			"day":       req.Day,
			"startTime": req.StartTime,
			"endTime":   req.EndTime,
		}
	}
	return resp, nil
}

// check runs the four time rules, collecting every violation; the
// resource-conflict scan only runs when all of them pass.
func (s *EditService) check(meetings []models.MeetingDetail, ec *editContext, day, startTime, endTime string) []dto.EditConflict {
	start := timeutil.ToMinutes(startTime)
	end := timeutil.ToMinutes(endTime)

	var timeRules []dto.EditConflict
	if start < 0 || end < 0 || start >= end || start < timeutil.DayStartMinutes {
		timeRules = append(timeRules, dto.EditConflict{
			Kind:    dto.ConflictKindStartTime,
			Message: fmt.Sprintf("start time %s is not a valid teaching start", startTime),
		})
	}
	// The remaining rules need a parseable interval.
	if start >= 0 && end > start {
		if timeutil.IsLunchViolation(start, end) {
			timeRules = append(timeRules, dto.EditConflict{
				Kind:    dto.ConflictKindLunch,
				Message: "meeting overlaps the lunch break",
			})
		}
		if end >= timeutil.DayCutoffMinutes {
			timeRules = append(timeRules, dto.EditConflict{
				Kind:    dto.ConflictKindCutoff,
				Message: fmt.Sprintf("meeting must end before %s", timeutil.MinutesToTime(timeutil.DayCutoffMinutes)),
			})
		}
		if ec.Units > 0 && !s.durationAllowed(end-start, ec) {
			timeRules = append(timeRules, dto.EditConflict{
				Kind:    dto.ConflictKindDuration,
				Message: fmt.Sprintf("%d minutes is not a valid session length for a %d-unit subject", end-start, ec.Units),
			})
		}
	}
	if len(timeRules) > 0 {
		return timeRules
	}

	var conflicts []dto.EditConflict
	for _, d := range timeutil.ParseCombinedDays(day) {
		conflicts = append(conflicts, findConflicts(meetings, ConflictQuery{
			InstructorID:     ec.InstructorID,
			RoomID:           ec.RoomID,
			SectionID:        ec.SectionID,
			Day:              d,
			Start:            start,
			End:              end,
			ExcludeSubjectID: ec.SubjectID,
			ExcludeEntryID:   ec.EntryID,
			ExcludeMeetingID: ec.MeetingID,
		})...)
	}
	return conflicts
}

// durationAllowed accepts any canonical session length for the subject, plus
// the even per-day split when the entry meets on several days.
func (s *EditService) durationAllowed(durationMinutes int, ec *editContext) bool {
	if timeutil.MatchesSessionDuration(durationMinutes, ec.Units, ec.EmploymentType) {
		return true
	}
	if n := len(ec.JointDays); n > 1 {
		return durationMinutes*n == ec.Units*60
	}
	return false
}

// resolveContext fills identities the request omits from the referenced
// meeting, and looks up units and employment type for the duration rule.
func (s *EditService) resolveContext(ctx context.Context, meetings []models.MeetingDetail, req dto.ValidateEditRequest) (*editContext, error) {
	ec := &editContext{
		MeetingID:    req.MeetingID,
		EntryID:      req.EntryID,
		InstructorID: req.InstructorID,
		RoomID:       req.RoomID,
		SectionID:    req.SectionID,
	}

	var base *models.MeetingDetail
	if req.MeetingID != "" {
		for i := range meetings {
			if meetings[i].MeetingID == req.MeetingID {
				base = &meetings[i]
				break
			}
		}
		if base == nil {
			found, err := s.meetings.FindDetailByID(ctx, req.MeetingID)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
			}
			base = found
		}
	}
	if base != nil {
		ec.EntryID = base.EntryID
		ec.SubjectID = base.SubjectID
		if ec.InstructorID == "" {
			ec.InstructorID = base.InstructorID
		}
		if ec.RoomID == "" {
			ec.RoomID = base.RoomID
		}
		if ec.SectionID == "" {
			ec.SectionID = base.SectionID
		}
		ec.JointDays = entryDays(meetings, base.EntryID)
		ec.CurrentDay = base.Day
		ec.CurrentStart = timeutil.ToMinutes(base.StartTime)
		ec.CurrentRoomID = base.RoomID
	}

	if ec.SubjectID != "" {
		if subject, err := s.subjects.FindByID(ctx, ec.SubjectID); err == nil {
			ec.Units = subject.Units
		}
	}
	ec.EmploymentType = timeutil.EmploymentFullTime
	if ec.InstructorID != "" {
		if instructor, err := s.instructors.FindByID(ctx, ec.InstructorID); err == nil {
			ec.EmploymentType = instructor.EmploymentType
		}
	}
	return ec, nil
}

// Suggest proposes alternative conflict-free slots for an edit. When the
// edited meeting belongs to a multi-day entry the proposed time must be free
// on every one of those days, and the suggestion carries the combined-day
// label.
func (s *EditService) Suggest(ctx context.Context, req dto.SuggestRequest) (*dto.SuggestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	meetings, err := s.meetings.ListDetailsByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group meetings")
	}

	ec, err := s.resolveContext(ctx, meetings, dto.ValidateEditRequest{
		GroupID:      req.GroupID,
		MeetingID:    req.MeetingID,
		InstructorID: req.InstructorID,
		RoomID:       req.RoomID,
		SectionID:    req.SectionID,
	})
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room catalog")
	}
	candidateRooms := orderRoomsCurrentFirst(rooms, ec.RoomID)

	daySets := s.candidateDaySets(ec, req.EditType, req.PreferredDay)
	duration := req.DurationMinutes

	limit := maxSuggestions
	if len(ec.JointDays) > 1 {
		limit = maxJointSuggestions
	}

	resp := &dto.SuggestResponse{}
	seen := make(map[string]bool)

	for _, days := range daySets {
		label := timeutil.CombineDays(days)
		for _, start := range timeutil.CandidateStarts() {
			if len(resp.Suggestions) >= limit {
				break
			}
			end := start + duration
			if !timeutil.WithinDayWindow(start, end) || timeutil.IsLunchViolation(start, end) {
				continue
			}
			for _, room := range candidateRooms {
				if isCurrentSlot(ec, label, start, room.ID) {
					continue
				}
				key := suggestionKey(req.EditType, label, start, room.ID)
				if seen[key] {
					continue
				}
				if !s.slotFreeOnDays(meetings, ec, days, start, end, room.ID) {
					continue
				}
				// Final gate: the suggestion must itself validate.
				if conflicts := s.check(meetings, withRoom(ec, room.ID), label, timeutil.MinutesToTime(start), timeutil.MinutesToTime(end)); len(conflicts) > 0 {
					continue
				}
				seen[key] = true
				resp.Suggestions = append(resp.Suggestions, dto.Suggestion{
					Day:       label,
					StartTime: timeutil.MinutesToTime(start),
					EndTime:   timeutil.MinutesToTime(end),
					RoomID:    room.ID,
					RoomName:  room.Name,
				})
				break
			}
		}
		if len(resp.Suggestions) >= limit {
			break
		}
	}

	resp.Count = len(resp.Suggestions)
	return resp, nil
}

// UpdateMeeting re-validates and persists an approved edit, then drops the
// group's cached conflict report.
func (s *EditService) UpdateMeeting(ctx context.Context, meetingID string, req dto.UpdateMeetingRequest) (*dto.UpdateMeetingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	detail, err := s.meetings.FindDetailByID(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}

	validation, err := s.ValidateEdit(ctx, dto.ValidateEditRequest{
		GroupID:      detail.GroupID,
		MeetingID:    meetingID,
		Day:          req.Day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		InstructorID: req.InstructorID,
		RoomID:       req.RoomID,
	})
	if err != nil {
		return nil, err
	}
	if !validation.OK {
		return &dto.UpdateMeetingResponse{
			OK:        false,
			Message:   rejectionMessage(validation.Conflicts),
			Conflicts: validation.Conflicts,
		}, nil
	}

	meeting := models.ScheduleMeeting{
		ID:           detail.MeetingID,
		EntryID:      detail.EntryID,
		InstructorID: pick(req.InstructorID, detail.InstructorID),
		RoomID:       pick(req.RoomID, detail.RoomID),
		Day:          req.Day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MeetingType:  detail.MeetingType,
		UpdatedAt:    time.Now(),
	}
	if err := s.meetings.Update(ctx, nil, &meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update meeting")
	}

	if s.cache != nil {
		if err := s.cache.InvalidateGroup(ctx, detail.GroupID); err != nil {
			s.logger.Warn("failed to invalidate conflict cache",
				zap.String("group_id", detail.GroupID), zap.Error(err))
		}
	}

	return &dto.UpdateMeetingResponse{OK: true, Meeting: &meeting}, nil
}

// candidateDaySets enumerates the day combinations a suggestion may target.
// Joint entries move as one block across all their days; single meetings try
// the preferred day first, then the rest of the teaching week. A day edit
// exists to move the meeting, so its current day is never a candidate.
func (s *EditService) candidateDaySets(ec *editContext, editType, preferredDay string) [][]string {
	if len(ec.JointDays) > 1 {
		return [][]string{ec.JointDays}
	}
	skip := ""
	if editType == dto.EditTypeDay {
		skip = timeutil.NormalizeDay(ec.CurrentDay)
	}
	var sets [][]string
	if d := timeutil.NormalizeDay(preferredDay); d != "" && d != skip {
		sets = append(sets, []string{d})
	}
	for _, d := range timeutil.SchedulingDays() {
		if d == skip {
			continue
		}
		if len(sets) > 0 && sets[0][0] == d {
			continue
		}
		sets = append(sets, []string{d})
	}
	return sets
}

// rejectionMessage picks the response message for a failed edit: time-rule
// violations take precedence over resource conflicts.
func rejectionMessage(conflicts []dto.EditConflict) string {
	for _, c := range conflicts {
		switch c.Kind {
		case dto.ConflictKindStartTime, dto.ConflictKindLunch, dto.ConflictKindCutoff, dto.ConflictKindDuration:
			return appErrors.ErrTimeRuleViolation.Message
		}
	}
	return appErrors.ErrScheduleConflict.Message
}

// isCurrentSlot reports whether a candidate matches the meeting's existing
// placement, which is never worth suggesting back.
func isCurrentSlot(ec *editContext, label string, start int, roomID string) bool {
	current := timeutil.NormalizeDay(ec.CurrentDay)
	if len(ec.JointDays) > 1 {
		current = timeutil.CombineDays(ec.JointDays)
	}
	return label == current && start == ec.CurrentStart && roomID == ec.CurrentRoomID
}

func (s *EditService) slotFreeOnDays(meetings []models.MeetingDetail, ec *editContext, days []string, start, end int, roomID string) bool {
	for _, day := range days {
		if hasConflict(meetings, ConflictQuery{
			InstructorID:     ec.InstructorID,
			RoomID:           roomID,
			SectionID:        ec.SectionID,
			Day:              day,
			Start:            start,
			End:              end,
			ExcludeSubjectID: ec.SubjectID,
			ExcludeEntryID:   ec.EntryID,
			ExcludeMeetingID: ec.MeetingID,
		}) {
			return false
		}
	}
	return true
}

func entryDays(meetings []models.MeetingDetail, entryID string) []string {
	var days []string
	seen := make(map[string]bool)
	for i := range meetings {
		if meetings[i].EntryID != entryID {
			continue
		}
		for _, d := range timeutil.ParseCombinedDays(meetings[i].Day) {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	return timeutil.SortWeekly(days)
}

func orderRoomsCurrentFirst(rooms []models.Room, currentID string) []models.Room {
	if currentID == "" {
		return rooms
	}
	ordered := make([]models.Room, 0, len(rooms))
	for i := range rooms {
		if rooms[i].ID == currentID {
			ordered = append(ordered, rooms[i])
			break
		}
	}
	for i := range rooms {
		if rooms[i].ID != currentID {
			ordered = append(ordered, rooms[i])
		}
	}
	return ordered
}

// suggestionKey dedups day-change suggestions by day alone so each day shows
// once; time and room changes dedup on the full cell.
func suggestionKey(editType, dayLabel string, start int, roomID string) string {
	if editType == dto.EditTypeDay {
		return dayLabel
	}
	return fmt.Sprintf("%s|%d|%s", dayLabel, start, roomID)
}

func withRoom(ec *editContext, roomID string) *editContext {
	clone := *ec
	clone.RoomID = roomID
	return &clone
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

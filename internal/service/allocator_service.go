package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/pkg/config"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type allocatorGroupRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, group *models.ScheduleGroup) error
}

type allocatorEntryRepository interface {
	FindOrCreate(ctx context.Context, exec sqlx.ExtContext, groupID, subjectID, sectionID string) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	CountMeetings(ctx context.Context, exec sqlx.ExtContext, entryID string) (int, error)
}

type allocatorMeetingRepository interface {
	InsertIgnore(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) (bool, error)
	Update(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) error
}

type allocatorRoomReader interface {
	ListActive(ctx context.Context) ([]models.Room, error)
	FindByName(ctx context.Context, name string) (*models.Room, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const algorithmName = "slot_allocation_v2"

// AllocatorService is the slot allocation engine. One Generate call is one
// run: it creates a fresh schedule group and places every requested course
// meeting while honoring the hard constraints, falling back through
// same-time alternatives, a full grid scan and backtracking eviction before
// giving up on a meeting.
type AllocatorService struct {
	groups    allocatorGroupRepository
	entries   allocatorEntryRepository
	meetings  allocatorMeetingRepository
	rooms     allocatorRoomReader
	resolver  *ResolverService
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       config.SchedulerConfig
}

// NewAllocatorService wires the engine's dependencies.
func NewAllocatorService(
	groups allocatorGroupRepository,
	entries allocatorEntryRepository,
	meetings allocatorMeetingRepository,
	rooms allocatorRoomReader,
	resolver *ResolverService,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg config.SchedulerConfig,
) *AllocatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GenerationBudget <= 0 {
		cfg.GenerationBudget = 45 * time.Second
	}
	if cfg.MaxEvictionAttempts <= 0 {
		cfg.MaxEvictionAttempts = 25
	}
	return &AllocatorService{
		groups:    groups,
		entries:   entries,
		meetings:  meetings,
		rooms:     rooms,
		resolver:  resolver,
		tx:        tx,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// allocationRun is the ephemeral state of one generation pass. Everything in
// it is discarded when Generate returns.
type allocationRun struct {
	groupID  string
	rooms    []models.Room
	roomByID map[string]*models.Room
	tracker  *ResourceTracker
	selector *roomSelector
	placed   []models.MeetingDetail
	pending  []models.MeetingDetail
	deadline time.Time

	schedules []dto.PlacedMeeting
	skipped   []dto.SkippedMeeting
	stats     dto.GenerationStats
}

func (r *allocationRun) expired() bool {
	return time.Now().After(r.deadline)
}

// checkable is the meeting set conflict checks run against: everything
// persisted this run plus the current row's not-yet-committed placements.
// Without the pending set a later leg of the same row could land on top of
// an earlier one.
func (r *allocationRun) checkable() []models.MeetingDetail {
	if len(r.pending) == 0 {
		return r.placed
	}
	merged := make([]models.MeetingDetail, 0, len(r.placed)+len(r.pending))
	merged = append(merged, r.placed...)
	merged = append(merged, r.pending...)
	return merged
}

// entryContext carries the resolved identities of the course being placed.
type entryContext struct {
	EntryID        string
	SubjectID      string
	SubjectCode    string
	SectionID      string
	SectionLabel   string
	InstructorID   string
	Units          int
	EmploymentType string
	MeetingType    string
	RequiresLab    bool
	EstStudents    int
}

// placement is one resolved (day, interval, room) cell.
type placement struct {
	Day        string
	Start      int
	End        int
	RoomID     string
	Relocated  bool
	roomBooked bool
}

// Generate runs the allocation engine for the request and persists the
// resulting group. Failures scoped to one course or meeting never abort the
// run.
func (s *AllocatorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room catalog")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active rooms available")
	}

	group := &models.ScheduleGroup{
		Department: req.Department,
		SchoolYear: req.SchoolYear,
		Semester:   req.Semester,
	}
	if err := s.groups.Create(ctx, nil, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule group")
	}

	tracker := NewResourceTracker()
	run := &allocationRun{
		groupID:  group.ID,
		rooms:    rooms,
		roomByID: make(map[string]*models.Room, len(rooms)),
		tracker:  tracker,
		selector: newRoomSelector(rooms, tracker),
		deadline: time.Now().Add(s.cfg.GenerationBudget),
	}
	for i := range rooms {
		run.roomByID[rooms[i].ID] = &rooms[i]
	}

	for i := range req.Rows {
		if run.expired() {
			run.stats.PartialTimeout = true
			s.logger.Warn("generation budget exceeded, returning partial result",
				zap.String("group_id", run.groupID),
				zap.Int("rows_remaining", len(req.Rows)-i))
			break
		}
		s.allocateRow(ctx, run, req.Rows[i])
	}

	if s.metrics != nil {
		s.metrics.RecordGeneration(run.stats.Placed, run.stats.Skipped, run.stats.Evictions)
	}

	return &dto.GenerateScheduleResponse{
		Success:   run.stats.Placed > 0,
		GroupID:   run.groupID,
		Algorithm: algorithmName,
		Schedules: run.schedules,
		Skipped:   run.skipped,
		Stats:     run.stats,
	}, nil
}

// allocateRow places all weekly meetings of one course line. Errors are
// absorbed into skip records; the run always continues.
func (s *AllocatorService) allocateRow(ctx context.Context, run *allocationRun, row dto.InstructorRow) {
	days := timeutil.ParseCombinedDays(row.Days)
	if len(days) == 0 {
		s.recordSkip(run, row.SubjectCode, row.Block, row.Days, "unrecognised day value")
		return
	}
	run.stats.Requested += len(days)

	ec, err := s.resolveRow(ctx, run, row)
	if err != nil {
		s.logger.Error("failed to resolve course identities",
			zap.String("subject", row.SubjectCode), zap.Error(err))
		s.recordSkipDays(run, row.SubjectCode, row.Block, days, "identity resolution failed")
		return
	}

	start := timeutil.ToMinutes(row.StartTime)
	end := timeutil.ToMinutes(row.EndTime)
	requestedValid := start >= 0 && end > start &&
		timeutil.WithinDayWindow(start, end) &&
		!timeutil.IsLunchViolation(start, end) &&
		timeutil.MatchesSessionDuration(end-start, ec.Units, ec.EmploymentType)
	if !requestedValid {
		durations := timeutil.SessionDurations(ec.Units, ec.EmploymentType)
		if len(durations) == 0 {
			s.recordSkipDays(run, row.SubjectCode, row.Block, days, "no valid session duration")
			return
		}
		// Multi-day requests take the split duration when one exists.
		pick := durations[0]
		if len(days) > 1 && len(durations) > 1 {
			pick = durations[len(durations)-1]
		}
		start = timeutil.DayStartMinutes
		end = start + int(pick*60)
	}

	preferredRoom := s.resolvePreferredRoom(ctx, run, row.PreferredRoom)

	var canonical *placement
	var pending []models.ScheduleMeeting
	var pendingPlacements []placement

	for _, day := range days {
		if run.expired() {
			run.stats.PartialTimeout = true
			s.recordSkip(run, ec.SubjectCode, ec.SectionLabel, day, appErrors.ErrTimeout.Message)
			continue
		}

		dayStart, dayEnd, dayRoom, roomLocked := start, end, preferredRoom, false
		if canonical != nil {
			// Joint session: later days inherit the first placement's time
			// and room, overriding any caller-supplied room.
			dayStart, dayEnd, dayRoom, roomLocked = canonical.Start, canonical.End, canonical.RoomID, true
			if preferredRoom != "" && preferredRoom != canonical.RoomID {
				s.logger.Debug("room locked to first meeting, caller room ignored",
					zap.String("entry_id", ec.EntryID), zap.String("requested_room", preferredRoom))
			}
		}

		p, reason := s.placeOneDay(ctx, run, ec, day, dayStart, dayEnd, dayRoom, roomLocked, !requestedValid && canonical == nil)
		if p == nil {
			s.recordSkip(run, ec.SubjectCode, ec.SectionLabel, day, reason)
			continue
		}

		s.bookPlacement(run, ec, *p)
		meeting := models.ScheduleMeeting{
			ID:           uuid.NewString(),
			EntryID:      ec.EntryID,
			InstructorID: ec.InstructorID,
			RoomID:       p.RoomID,
			Day:          p.Day,
			StartTime:    timeutil.MinutesToTime(p.Start),
			EndTime:      timeutil.MinutesToTime(p.End),
			MeetingType:  ec.MeetingType,
		}
		pending = append(pending, meeting)
		pendingPlacements = append(pendingPlacements, *p)
		run.pending = append(run.pending, pendingDetail(run, ec, meeting))

		if canonical == nil {
			canonical = p
		}
	}

	if len(pending) > 0 {
		if err := s.persistEntryMeetings(ctx, run, ec, pending, pendingPlacements); err != nil {
			s.logger.Error("failed to persist entry meetings, entry not placed",
				zap.String("entry_id", ec.EntryID), zap.Error(err))
			for i := range pending {
				s.releasePlacement(run, ec, pendingPlacements[i])
				s.recordSkip(run, ec.SubjectCode, ec.SectionLabel, pending[i].Day, "persistence failure")
			}
			pending = nil
		}
	}
	run.pending = nil

	s.dropEntryIfEmpty(ctx, run, ec)
}

// pendingDetail projects a not-yet-persisted meeting into the detail shape
// the conflict predicate reads.
func pendingDetail(run *allocationRun, ec *entryContext, m models.ScheduleMeeting) models.MeetingDetail {
	return models.MeetingDetail{
		MeetingID:    m.ID,
		EntryID:      m.EntryID,
		GroupID:      run.groupID,
		SubjectID:    ec.SubjectID,
		SectionID:    ec.SectionID,
		InstructorID: m.InstructorID,
		RoomID:       m.RoomID,
		Day:          m.Day,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		MeetingType:  m.MeetingType,
	}
}

func (s *AllocatorService) resolveRow(ctx context.Context, run *allocationRun, row dto.InstructorRow) (*entryContext, error) {
	instructor, err := s.resolver.ResolveInstructor(ctx, row.InstructorName, row.EmploymentType)
	if err != nil {
		return nil, fmt.Errorf("resolve instructor: %w", err)
	}
	subject, err := s.resolver.ResolveSubject(ctx, row.SubjectCode, row.SubjectDescription, row.Units)
	if err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	section, err := s.resolver.ResolveSection(ctx, row.Department, row.YearLevel, row.Block)
	if err != nil {
		return nil, fmt.Errorf("resolve section: %w", err)
	}
	entry, err := s.entries.FindOrCreate(ctx, nil, run.groupID, subject.ID, section.ID)
	if err != nil {
		return nil, fmt.Errorf("find or create entry: %w", err)
	}

	meetingType := models.MeetingTypeLecture
	if row.RequiresLab {
		meetingType = models.MeetingTypeLab
	}
	if row.MeetingType != "" {
		meetingType = row.MeetingType
	}

	return &entryContext{
		EntryID:        entry.ID,
		SubjectID:      subject.ID,
		SubjectCode:    subject.Code,
		SectionID:      section.ID,
		SectionLabel:   fmt.Sprintf("%s %d%s", section.Department, section.YearLevel, section.Block),
		InstructorID:   instructor.ID,
		Units:          subject.Units,
		EmploymentType: instructor.EmploymentType,
		MeetingType:    meetingType,
		RequiresLab:    row.RequiresLab,
		EstStudents:    row.EstimatedStudents,
	}, nil
}

func (s *AllocatorService) resolvePreferredRoom(ctx context.Context, run *allocationRun, name string) string {
	if name == "" {
		return ""
	}
	room, err := s.rooms.FindByName(ctx, name)
	if err != nil {
		return ""
	}
	if _, active := run.roomByID[room.ID]; !active {
		return ""
	}
	return room.ID
}

// placeOneDay resolves one meeting cell: direct insert, then a same-time
// alternative, then the full candidate grid, then backtracking eviction.
// A nil placement means the meeting is skipped for the returned reason.
func (s *AllocatorService) placeOneDay(ctx context.Context, run *allocationRun, ec *entryContext, day string, start, end int, room string, roomLocked, forceScan bool) (*placement, string) {
	duration := end - start

	if !forceScan {
		if p := s.tryDirect(run, ec, day, start, end, room); p != nil {
			return p, ""
		}
		if p := s.trySameTime(run, ec, day, start, end, room, roomLocked); p != nil {
			return p, ""
		}
	}
	if p := s.scanGrid(run, ec, duration, room); p != nil {
		return p, ""
	}
	if p := s.tryEviction(ctx, run, ec, duration, room); p != nil {
		return p, ""
	}
	if s.noRoomCanHost(run, ec) {
		return nil, appErrors.ErrNoSuitableRoom.Message
	}
	return nil, appErrors.ErrScheduleConflict.Message
}

// tryDirect attempts the caller's exact (day, interval, room).
func (s *AllocatorService) tryDirect(run *allocationRun, ec *entryContext, day string, start, end int, room string) *placement {
	q := ConflictQuery{
		InstructorID:     ec.InstructorID,
		SectionID:        ec.SectionID,
		Day:              day,
		Start:            start,
		End:              end,
		ExcludeSubjectID: ec.SubjectID,
	}
	if hasConflict(run.checkable(), q) {
		return nil
	}

	if room != "" {
		q.InstructorID, q.SectionID, q.RoomID = "", "", room
		if !hasConflict(run.checkable(), q) {
			if r, ok := run.roomByID[room]; ok && r.IsActive {
				return &placement{Day: day, Start: start, End: end, RoomID: room}
			}
		}
	}

	chosen, ok := run.selector.Choose(roomRequest{
		PreferredRoomID:   room,
		Day:               day,
		Start:             start,
		End:               end,
		RequiresLab:       ec.RequiresLab,
		EstimatedStudents: ec.EstStudents,
	})
	if !ok {
		return nil
	}
	return &placement{Day: day, Start: start, End: end, RoomID: chosen, roomBooked: true}
}

// trySameTime keeps the duration and time-of-day fixed and searches the
// remaining day/room combinations, current day first.
func (s *AllocatorService) trySameTime(run *allocationRun, ec *entryContext, day string, start, end int, room string, roomLocked bool) *placement {
	days := append([]string{day}, otherDays(day)...)
	candidates := s.candidateRooms(run, room, roomLocked, ec.RequiresLab)

	for _, d := range days {
		for _, r := range candidates {
			if s.cellFree(run, ec, d, start, end, r) {
				return &placement{Day: d, Start: start, End: end, RoomID: r, Relocated: d != day}
			}
		}
	}
	return nil
}

// scanGrid walks the comprehensive candidate grid ordered by weekday then
// slot start, returning the first conflict-free (slot, room) combination.
func (s *AllocatorService) scanGrid(run *allocationRun, ec *entryContext, duration int, room string) *placement {
	candidates := s.candidateRooms(run, room, false, ec.RequiresLab)
	for _, slot := range timeutil.CandidateSlots(duration) {
		if run.expired() {
			return nil
		}
		for _, r := range candidates {
			if s.cellFree(run, ec, slot.Day, slot.Start, slot.End, r) {
				return &placement{Day: slot.Day, Start: slot.Start, End: slot.End, RoomID: r, Relocated: true}
			}
		}
	}
	return nil
}

// tryEviction is the last resort: find a slot blocked by exactly one other
// meeting, tentatively remove that meeting, re-place it elsewhere, and keep
// the swap only when both courses end up placed. On failure the evicted
// meeting is restored exactly as it was.
func (s *AllocatorService) tryEviction(ctx context.Context, run *allocationRun, ec *entryContext, duration int, room string) *placement {
	candidates := s.candidateRooms(run, room, false, ec.RequiresLab)
	attempts := 0

	for _, slot := range timeutil.CandidateSlots(duration) {
		for _, r := range candidates {
			if attempts >= s.cfg.MaxEvictionAttempts || run.expired() {
				return nil
			}
			if cand, ok := run.roomByID[r]; !ok || (ec.RequiresLab && !cand.IsLab) {
				continue
			}
			attempts++

			conflicts := findConflicts(run.checkable(), ConflictQuery{
				InstructorID:     ec.InstructorID,
				RoomID:           r,
				SectionID:        ec.SectionID,
				Day:              slot.Day,
				Start:            slot.Start,
				End:              slot.End,
				ExcludeSubjectID: ec.SubjectID,
			})
			victim := singleVictim(conflicts, ec.EntryID)
			if victim == nil {
				continue
			}

			if p := s.attemptSwap(ctx, run, ec, *victim, slot, r); p != nil {
				run.stats.Evictions++
				return p
			}
		}
	}
	return nil
}

// attemptSwap performs one eviction attempt transactionally against the run
// state: the victim is snapshotted and restored byte-for-byte unless its
// re-placement and the DB update both succeed.
func (s *AllocatorService) attemptSwap(ctx context.Context, run *allocationRun, ec *entryContext, victim models.MeetingDetail, slot timeutil.Slot, roomID string) *placement {
	vStart, vEnd, _ := normalizeInterval(victim.StartTime, victim.EndTime)
	victimEC := &entryContext{
		EntryID:      victim.EntryID,
		SubjectID:    victim.SubjectID,
		SectionID:    victim.SectionID,
		InstructorID: victim.InstructorID,
	}
	victimDuration := vEnd - vStart

	s.removePlaced(run, victim.MeetingID)
	s.releasePlacement(run, victimEC, placement{Day: victim.Day, Start: vStart, End: vEnd, RoomID: victim.RoomID})

	claimed := placement{Day: slot.Day, Start: slot.Start, End: slot.End, RoomID: roomID}
	s.bookPlacement(run, ec, claimed)
	// The victim's re-placement scan must see the claimed cell, or it could
	// relocate straight back onto it.
	run.pending = append(run.pending, models.MeetingDetail{
		EntryID:      ec.EntryID,
		GroupID:      run.groupID,
		SubjectID:    ec.SubjectID,
		SectionID:    ec.SectionID,
		InstructorID: ec.InstructorID,
		RoomID:       roomID,
		Day:          slot.Day,
		StartTime:    timeutil.MinutesToTime(slot.Start),
		EndTime:      timeutil.MinutesToTime(slot.End),
	})
	popClaim := func() { run.pending = run.pending[:len(run.pending)-1] }

	undo := func() {
		popClaim()
		s.releasePlacement(run, ec, claimed)
		restored := placement{Day: victim.Day, Start: vStart, End: vEnd, RoomID: victim.RoomID}
		s.bookPlacement(run, victimEC, restored)
		run.placed = append(run.placed, victim)
	}

	relocation := s.scanGrid(run, victimEC, victimDuration, victim.RoomID)
	if relocation == nil {
		undo()
		return nil
	}

	moved := models.ScheduleMeeting{
		ID:           victim.MeetingID,
		EntryID:      victim.EntryID,
		InstructorID: victim.InstructorID,
		RoomID:       relocation.RoomID,
		Day:          relocation.Day,
		StartTime:    timeutil.MinutesToTime(relocation.Start),
		EndTime:      timeutil.MinutesToTime(relocation.End),
		MeetingType:  victim.MeetingType,
	}
	if err := s.meetings.Update(ctx, nil, &moved); err != nil {
		s.logger.Error("eviction update failed, restoring victim",
			zap.String("meeting_id", victim.MeetingID), zap.Error(err))
		undo()
		return nil
	}

	s.bookPlacement(run, victimEC, *relocation)
	relocatedDetail := victim
	relocatedDetail.Day = relocation.Day
	relocatedDetail.StartTime = moved.StartTime
	relocatedDetail.EndTime = moved.EndTime
	relocatedDetail.RoomID = relocation.RoomID
	run.placed = append(run.placed, relocatedDetail)

	s.logger.Info("evicted meeting relocated",
		zap.String("meeting_id", victim.MeetingID),
		zap.String("from", victim.Day+" "+victim.StartTime),
		zap.String("to", relocation.Day+" "+moved.StartTime))

	// Hand booking and pending ownership back to the caller, which re-books
	// the returned placement through the normal path.
	popClaim()
	s.releasePlacement(run, ec, claimed)
	claimed.Relocated = true
	return &claimed
}

// persistEntryMeetings writes one entry's pending meetings in a single
// transaction with insert-or-ignore semantics on the uniqueness key.
func (s *AllocatorService) persistEntryMeetings(ctx context.Context, run *allocationRun, ec *entryContext, pending []models.ScheduleMeeting, placements []placement) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin meeting batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inserted := make([]bool, len(pending))
	for i := range pending {
		if inserted[i], err = s.meetings.InsertIgnore(ctx, tx, &pending[i]); err != nil {
			return fmt.Errorf("insert meeting: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit meeting batch: %w", err)
	}

	for i := range pending {
		m := pending[i]
		if !inserted[i] {
			// The uniqueness key swallowed the row, so it must not count
			// as a placement.
			s.releasePlacement(run, ec, placements[i])
			s.recordSkip(run, ec.SubjectCode, ec.SectionLabel, m.Day, "duplicate meeting ignored")
			continue
		}
		run.placed = append(run.placed, pendingDetail(run, ec, m))
		run.stats.Placed++
		if placements[i].Relocated {
			run.stats.Relocated++
		}
		run.schedules = append(run.schedules, dto.PlacedMeeting{
			EntryID:      m.EntryID,
			SubjectCode:  ec.SubjectCode,
			Section:      ec.SectionLabel,
			InstructorID: m.InstructorID,
			RoomID:       m.RoomID,
			Day:          m.Day,
			StartTime:    m.StartTime,
			EndTime:      m.EndTime,
			Relocated:    placements[i].Relocated,
		})
	}
	return nil
}

// dropEntryIfEmpty removes an entry that finished the pass with no meetings.
func (s *AllocatorService) dropEntryIfEmpty(ctx context.Context, run *allocationRun, ec *entryContext) {
	count, err := s.entries.CountMeetings(ctx, nil, ec.EntryID)
	if err != nil {
		s.logger.Warn("failed to count entry meetings", zap.String("entry_id", ec.EntryID), zap.Error(err))
		return
	}
	if count > 0 {
		return
	}
	if err := s.entries.Delete(ctx, nil, ec.EntryID); err != nil {
		s.logger.Warn("failed to delete empty entry", zap.String("entry_id", ec.EntryID), zap.Error(err))
		return
	}
	run.stats.EntriesDropped++
}

// --- placement bookkeeping ---

func (s *AllocatorService) bookPlacement(run *allocationRun, ec *entryContext, p placement) {
	run.tracker.Book(trackInstructor, ec.InstructorID, p.Day, p.Start, p.End)
	run.tracker.Book(trackSection, ec.SectionID, p.Day, p.Start, p.End)
	if !p.roomBooked {
		run.tracker.Book(trackRoom, p.RoomID, p.Day, p.Start, p.End)
	}
}

func (s *AllocatorService) releasePlacement(run *allocationRun, ec *entryContext, p placement) {
	run.tracker.Release(trackInstructor, ec.InstructorID, p.Day, p.Start, p.End)
	run.tracker.Release(trackSection, ec.SectionID, p.Day, p.Start, p.End)
	run.tracker.Release(trackRoom, p.RoomID, p.Day, p.Start, p.End)
}

func (s *AllocatorService) removePlaced(run *allocationRun, meetingID string) {
	for i := range run.placed {
		if run.placed[i].MeetingID == meetingID {
			run.placed = append(run.placed[:i], run.placed[i+1:]...)
			return
		}
	}
}

// cellFree reports whether the (day, interval, room) cell is conflict-free
// for the course, including room activity and lab fit.
func (s *AllocatorService) cellFree(run *allocationRun, ec *entryContext, day string, start, end int, roomID string) bool {
	room, ok := run.roomByID[roomID]
	if !ok || !room.IsActive {
		return false
	}
	if ec.RequiresLab && !room.IsLab {
		return false
	}
	return !hasConflict(run.checkable(), ConflictQuery{
		InstructorID:     ec.InstructorID,
		RoomID:           roomID,
		SectionID:        ec.SectionID,
		Day:              day,
		Start:            start,
		End:              end,
		ExcludeSubjectID: ec.SubjectID,
	})
}

// candidateRooms orders the rooms a scan should try: the locked or preferred
// room first, then lab-matching rooms, then the rest of the active catalog.
// A locked room is the only candidate.
func (s *AllocatorService) candidateRooms(run *allocationRun, preferred string, roomLocked, requiresLab bool) []string {
	if roomLocked && preferred != "" {
		return []string{preferred}
	}
	ordered := make([]string, 0, len(run.rooms))
	seen := make(map[string]bool, len(run.rooms))
	add := func(id string) {
		if id != "" && !seen[id] {
			ordered = append(ordered, id)
			seen[id] = true
		}
	}
	add(preferred)
	for i := range run.rooms {
		if run.rooms[i].IsLab == requiresLab {
			add(run.rooms[i].ID)
		}
	}
	for i := range run.rooms {
		add(run.rooms[i].ID)
	}
	return ordered
}

// noRoomCanHost detects the "no suitable room" condition, e.g. a lab course
// with no active lab in the catalog.
func (s *AllocatorService) noRoomCanHost(run *allocationRun, ec *entryContext) bool {
	if !ec.RequiresLab {
		return len(run.rooms) == 0
	}
	for i := range run.rooms {
		if run.rooms[i].IsLab {
			return false
		}
	}
	return true
}

func (s *AllocatorService) recordSkip(run *allocationRun, subject, section, day, reason string) {
	run.stats.Skipped++
	run.skipped = append(run.skipped, dto.SkippedMeeting{
		SubjectCode: subject,
		Section:     section,
		Day:         day,
		Reason:      reason,
	})
	s.logger.Warn("meeting skipped",
		zap.String("subject", subject),
		zap.String("section", section),
		zap.String("day", day),
		zap.String("reason", reason))
}

func (s *AllocatorService) recordSkipDays(run *allocationRun, subject, section string, days []string, reason string) {
	for _, day := range days {
		s.recordSkip(run, subject, section, day, reason)
	}
}

func otherDays(day string) []string {
	var rest []string
	for _, d := range timeutil.SchedulingDays() {
		if d != day {
			rest = append(rest, d)
		}
	}
	return rest
}

func singleVictim(conflicts []dto.EditConflict, ownEntryID string) *models.MeetingDetail {
	var victim *models.MeetingDetail
	for _, c := range conflicts {
		if c.Meeting == nil {
			return nil
		}
		if c.Meeting.EntryID == ownEntryID {
			return nil
		}
		if victim == nil {
			victim = c.Meeting
			continue
		}
		if victim.MeetingID != c.Meeting.MeetingID {
			return nil
		}
	}
	return victim
}

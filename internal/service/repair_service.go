package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type repairMeetingRepository interface {
	ListDetailsByGroup(ctx context.Context, groupID string) ([]models.MeetingDetail, error)
	Update(ctx context.Context, exec sqlx.ExtContext, meeting *models.ScheduleMeeting) error
}

const maxRepairPasses = 3

// RepairService untangles overlap clusters in an already persisted group by
// sliding the later meetings of each cluster to adjacent free intervals.
// Right shifts are bounded by the repair ceiling, left shifts by the day
// start; meetings that fit neither way are left in place and reported.
type RepairService struct {
	meetings  repairMeetingRepository
	conflicts *ConflictService
	tx        txProvider
	logger    *zap.Logger
}

func NewRepairService(meetings repairMeetingRepository, conflicts *ConflictService, tx txProvider, logger *zap.Logger) *RepairService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairService{meetings: meetings, conflicts: conflicts, tx: tx, logger: logger}
}

// Repair runs up to maxRepairPasses shift passes over the group and persists
// every accepted move in one transaction.
func (s *RepairService) Repair(ctx context.Context, groupID string) (*dto.RepairResponse, error) {
	working, err := s.meetings.ListDetailsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group meetings")
	}

	resp := &dto.RepairResponse{GroupID: groupID}
	moved := make(map[string]models.MeetingDetail)

	for pass := 0; pass < maxRepairPasses; pass++ {
		clusters := s.allClusters(working, groupID)
		if len(clusters) == 0 {
			break
		}
		progress := false
		for _, cluster := range clusters {
			if s.repairCluster(working, cluster, resp, moved) {
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	// Count what is still overlapping after the final pass.
	for _, cluster := range s.allClusters(working, groupID) {
		resp.Unresolved += len(cluster.Meetings) - 1
		s.logger.Warn("conflict cluster left unresolved after repair",
			zap.String("group_id", groupID),
			zap.String("kind", cluster.Kind),
			zap.String("resource_id", cluster.ResourceID),
			zap.Int("meetings", len(cluster.Meetings)))
	}

	if err := s.persistMoves(ctx, moved); err != nil {
		return nil, err
	}
	resp.Resolved = len(resp.Moves)
	return resp, nil
}

func (s *RepairService) allClusters(working []models.MeetingDetail, groupID string) []models.ConflictCluster {
	occ := s.conflicts.expand(working)
	var out []models.ConflictCluster
	out = append(out, s.conflicts.clusterBy(occ, models.ConflictKindInstructor, groupID)...)
	out = append(out, s.conflicts.clusterBy(occ, models.ConflictKindRoom, groupID)...)
	out = append(out, s.conflicts.clusterBy(occ, models.ConflictKindSection, groupID)...)
	return out
}

// repairCluster keeps the earliest meeting anchored and walks the rest in
// start order, shifting each directly after its predecessor or, failing
// that, directly before the anchor.
func (s *RepairService) repairCluster(working []models.MeetingDetail, cluster models.ConflictCluster, resp *dto.RepairResponse, moved map[string]models.MeetingDetail) bool {
	members := make([]models.MeetingDetail, len(cluster.Meetings))
	copy(members, cluster.Meetings)
	// Membership snapshots may predate earlier moves in this pass; read the
	// current intervals from the working set.
	for i := range members {
		if cur := findWorking(working, members[i].MeetingID); cur != nil {
			members[i] = *cur
		}
	}
	sort.Slice(members, func(i, j int) bool {
		si, _, _ := normalizeInterval(members[i].StartTime, members[i].EndTime)
		sj, _, _ := normalizeInterval(members[j].StartTime, members[j].EndTime)
		if si != sj {
			return si < sj
		}
		return members[i].MeetingID < members[j].MeetingID
	})

	anchorStart, prevEnd, _ := normalizeInterval(members[0].StartTime, members[0].EndTime)
	progress := false

	for _, m := range members[1:] {
		start, end, _ := normalizeInterval(m.StartTime, m.EndTime)
		if start >= prevEnd {
			// Already clear of the predecessor after an earlier move.
			prevEnd = end
			continue
		}
		duration := end - start

		newStart, ok := s.findShift(working, m, prevEnd, anchorStart, duration)
		if !ok {
			continue
		}

		from := fmt.Sprintf("%s-%s", m.StartTime, m.EndTime)
		applyShift(working, m.MeetingID, newStart, newStart+duration)
		updated := findWorking(working, m.MeetingID)
		moved[m.MeetingID] = *updated
		resp.Moves = append(resp.Moves, dto.RepairMove{
			MeetingID: m.MeetingID,
			Day:       m.Day,
			From:      from,
			To:        fmt.Sprintf("%s-%s", updated.StartTime, updated.EndTime),
		})
		progress = true
		if newStart+duration > prevEnd {
			prevEnd = newStart + duration
		}
	}
	return progress
}

// findShift picks the new start minute: right of the predecessor when the
// interval stays under the repair ceiling, otherwise left of the anchor when
// the interval stays above the day start. Both options require the target
// interval to be free for the meeting's instructor, room and section.
func (s *RepairService) findShift(working []models.MeetingDetail, m models.MeetingDetail, prevEnd, anchorStart, duration int) (int, bool) {
	if prevEnd+duration <= timeutil.RepairCapMinutes && s.intervalFree(working, m, prevEnd, prevEnd+duration) {
		return prevEnd, true
	}
	leftStart := anchorStart - duration
	if leftStart >= timeutil.DayStartMinutes && s.intervalFree(working, m, leftStart, anchorStart) {
		return leftStart, true
	}
	return 0, false
}

func (s *RepairService) intervalFree(working []models.MeetingDetail, m models.MeetingDetail, start, end int) bool {
	for _, day := range timeutil.ParseCombinedDays(m.Day) {
		if hasConflict(working, ConflictQuery{
			InstructorID:     m.InstructorID,
			RoomID:           m.RoomID,
			SectionID:        m.SectionID,
			Day:              day,
			Start:            start,
			End:              end,
			ExcludeSubjectID: m.SubjectID,
			ExcludeMeetingID: m.MeetingID,
		}) {
			return false
		}
	}
	return true
}

func (s *RepairService) persistMoves(ctx context.Context, moved map[string]models.MeetingDetail) error {
	if len(moved) == 0 {
		return nil
	}
	ids := make([]string, 0, len(moved))
	for id := range moved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin repair transaction")
	}
	for _, id := range ids {
		d := moved[id]
		meeting := models.ScheduleMeeting{
			ID:           d.MeetingID,
			EntryID:      d.EntryID,
			InstructorID: d.InstructorID,
			RoomID:       d.RoomID,
			Day:          d.Day,
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
			MeetingType:  d.MeetingType,
		}
		if err := s.meetings.Update(ctx, tx, &meeting); err != nil {
			_ = tx.Rollback()
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist repaired meeting")
		}
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit repair transaction")
	}
	return nil
}

func findWorking(working []models.MeetingDetail, meetingID string) *models.MeetingDetail {
	for i := range working {
		if working[i].MeetingID == meetingID {
			return &working[i]
		}
	}
	return nil
}

func applyShift(working []models.MeetingDetail, meetingID string, start, end int) {
	if m := findWorking(working, meetingID); m != nil {
		m.StartTime = timeutil.MinutesToTime(start)
		m.EndTime = timeutil.MinutesToTime(end)
	}
}

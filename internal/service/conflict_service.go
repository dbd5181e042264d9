package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type conflictMeetingLister interface {
	ListDetailsByGroup(ctx context.Context, groupID string) ([]models.MeetingDetail, error)
}

type conflictGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleGroup, error)
}

// ConflictService scans a persisted group and clusters overlapping meetings
// per resource and day. Detection is scoped to a single group; meetings in
// other groups never contribute to a cluster.
type ConflictService struct {
	meetings conflictMeetingLister
	groups   conflictGroupReader
	logger   *zap.Logger
}

func NewConflictService(meetings conflictMeetingLister, groups conflictGroupReader, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{meetings: meetings, groups: groups, logger: logger}
}

// occurrence is one meeting expanded to a single concrete day with a
// normalized interval.
type occurrence struct {
	meeting models.MeetingDetail
	day     string
	start   int
	end     int
}

// Report builds the clustered conflict report for one group.
func (s *ConflictService) Report(ctx context.Context, groupID string) (*models.ConflictReport, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListDetailsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group meetings")
	}

	occurrences := s.expand(meetings)

	report := &models.ConflictReport{GroupID: groupID}
	report.Instructor = s.clusterBy(occurrences, models.ConflictKindInstructor, groupID)
	report.Room = s.clusterBy(occurrences, models.ConflictKindRoom, groupID)
	report.Section = s.clusterBy(occurrences, models.ConflictKindSection, groupID)
	report.Total = len(report.Instructor) + len(report.Room) + len(report.Section)
	return report, nil
}

// expand flattens combined-day values into per-day occurrences and repairs
// corrupted intervals by swapping, logging each swap.
func (s *ConflictService) expand(meetings []models.MeetingDetail) []occurrence {
	var out []occurrence
	for i := range meetings {
		m := meetings[i]
		start, end, swapped := normalizeInterval(m.StartTime, m.EndTime)
		if swapped {
			s.logger.Warn("meeting has inverted interval, treating as swapped",
				zap.String("meeting_id", m.MeetingID),
				zap.String("start", m.StartTime),
				zap.String("end", m.EndTime))
		}
		if start == end {
			continue
		}
		for _, day := range timeutil.ParseCombinedDays(m.Day) {
			out = append(out, occurrence{meeting: m, day: day, start: start, end: end})
		}
	}
	return out
}

func resourceID(o occurrence, kind string) string {
	switch kind {
	case models.ConflictKindInstructor:
		return o.meeting.InstructorID
	case models.ConflictKindRoom:
		return o.meeting.RoomID
	default:
		return o.meeting.SectionID
	}
}

// clusterBy buckets occurrences by (resource, day), sorts each bucket by
// start minute and sweeps it, absorbing every occurrence that overlaps the
// cluster's running envelope. Only clusters of two or more meetings are
// reported, and a cluster whose members all share one subject is a joint
// session, not a conflict, for the instructor and room kinds.
func (s *ConflictService) clusterBy(occurrences []occurrence, kind, groupID string) []models.ConflictCluster {
	buckets := make(map[string][]occurrence)
	var keys []string
	for _, o := range occurrences {
		id := resourceID(o, kind)
		if id == "" {
			continue
		}
		key := id + "|" + o.day
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], o)
	}
	sort.Strings(keys)

	var clusters []models.ConflictCluster
	for _, key := range keys {
		bucket := buckets[key]
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].start != bucket[j].start {
				return bucket[i].start < bucket[j].start
			}
			return bucket[i].meeting.MeetingID < bucket[j].meeting.MeetingID
		})

		current := []occurrence{bucket[0]}
		envelopeEnd := bucket[0].end
		flush := func() {
			if c := s.finishCluster(current, kind, groupID); c != nil {
				clusters = append(clusters, *c)
			}
		}
		for _, o := range bucket[1:] {
			if o.start < envelopeEnd {
				current = append(current, o)
				if o.end > envelopeEnd {
					envelopeEnd = o.end
				}
				continue
			}
			flush()
			current = []occurrence{o}
			envelopeEnd = o.end
		}
		flush()
	}
	return clusters
}

func (s *ConflictService) finishCluster(members []occurrence, kind, groupID string) *models.ConflictCluster {
	if len(members) < 2 {
		return nil
	}
	if kind != models.ConflictKindSection && sameSubject(members) {
		return nil
	}
	cluster := &models.ConflictCluster{
		Kind:       kind,
		ResourceID: resourceID(members[0], kind),
		GroupID:    groupID,
		Meetings:   make([]models.MeetingDetail, 0, len(members)),
	}
	seen := make(map[string]bool, len(members))
	for _, o := range members {
		if seen[o.meeting.MeetingID] {
			continue
		}
		seen[o.meeting.MeetingID] = true
		cluster.Meetings = append(cluster.Meetings, o.meeting)
	}
	if len(cluster.Meetings) < 2 {
		return nil
	}
	return cluster
}

func sameSubject(members []occurrence) bool {
	subject := members[0].meeting.SubjectID
	for _, o := range members[1:] {
		if o.meeting.SubjectID != subject {
			return false
		}
	}
	return true
}

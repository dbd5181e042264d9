package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
)

type scheduleGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleGroup, error)
	ListByTerm(ctx context.Context, department, schoolYear, semester string) ([]models.ScheduleGroup, error)
	Delete(ctx context.Context, id string) error
}

type scheduleMeetingReader interface {
	ListDetailsByGroup(ctx context.Context, groupID string) ([]models.MeetingDetail, error)
}

// ScheduleService exposes the read and lifecycle surface of persisted
// schedule groups, fronting the conflict scan with the report cache.
type ScheduleService struct {
	groups    scheduleGroupRepository
	meetings  scheduleMeetingReader
	conflicts *ConflictService
	repair    *RepairService
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

func NewScheduleService(
	groups scheduleGroupRepository,
	meetings scheduleMeetingReader,
	conflicts *ConflictService,
	repair *RepairService,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		groups:    groups,
		meetings:  meetings,
		conflicts: conflicts,
		repair:    repair,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// ListGroups returns the groups recorded for a term. Empty filters match
// everything.
func (s *ScheduleService) ListGroups(ctx context.Context, department, schoolYear, semester string) ([]models.ScheduleGroup, error) {
	groups, err := s.groups.ListByTerm(ctx, department, schoolYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule groups")
	}
	return groups, nil
}

// GetGroup loads one group.
func (s *ScheduleService) GetGroup(ctx context.Context, id string) (*models.ScheduleGroup, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule group")
	}
	return group, nil
}

// ListMeetings returns the denormalised meeting rows of a group.
func (s *ScheduleService) ListMeetings(ctx context.Context, groupID string) ([]models.MeetingDetail, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListDetailsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group meetings")
	}
	return meetings, nil
}

// DeleteGroup removes a group and everything under it.
func (s *ScheduleService) DeleteGroup(ctx context.Context, id string) error {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule group")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateGroup(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate conflict cache", zap.String("group_id", id), zap.Error(err))
		}
	}
	return nil
}

// ConflictReport returns the clustered conflict report for a group, serving
// from cache when a fresh copy exists.
func (s *ScheduleService) ConflictReport(ctx context.Context, groupID string) (*models.ConflictReport, error) {
	var cached models.ConflictReport
	if s.cache.GetConflictReport(ctx, groupID, &cached) {
		return &cached, nil
	}

	report, err := s.conflicts.Report(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule group not found")
		}
		return nil, err
	}
	s.cache.SetConflictReport(ctx, groupID, report)
	return report, nil
}

// Repair runs the shift pass over a group and invalidates its cached report
// when anything moved.
func (s *ScheduleService) Repair(ctx context.Context, groupID string) (*dto.RepairResponse, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	resp, err := s.repair.Repair(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRepair(len(resp.Moves))
	}
	if len(resp.Moves) > 0 && s.cache != nil {
		if err := s.cache.InvalidateGroup(ctx, groupID); err != nil {
			s.logger.Warn("failed to invalidate conflict cache", zap.String("group_id", groupID), zap.Error(err))
		}
	}
	return resp, nil
}

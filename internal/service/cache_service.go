package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/acadsync/timetable-api/pkg/errors"
)

// CacheStore abstracts persistence for cached payloads.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheService fronts the conflict-report cache. A disabled or nil service
// degrades to pass-through behavior.
type CacheService struct {
	store      CacheStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(store CacheStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &CacheService{store: store, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

func conflictReportKey(groupID string) string {
	return fmt.Sprintf("conflicts:group:%s", groupID)
}

// GetConflictReport reads a cached report for the group. It returns true on
// a hit; misses and transport errors both read as a miss.
func (s *CacheService) GetConflictReport(ctx context.Context, groupID string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	err := s.store.Get(ctx, conflictReportKey(groupID), dest)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn("conflict cache read failed", zap.String("group_id", groupID), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
		return false
	}
	s.metrics.RecordCacheOperation(true)
	return true
}

// SetConflictReport stores a report under the group's key.
func (s *CacheService) SetConflictReport(ctx context.Context, groupID string, value interface{}) {
	if !s.Enabled() {
		return
	}
	if err := s.store.Set(ctx, conflictReportKey(groupID), value, s.defaultTTL); err != nil && s.logger != nil {
		s.logger.Warn("conflict cache write failed", zap.String("group_id", groupID), zap.Error(err))
	}
}

// InvalidateGroup drops the cached report after a group's meetings change.
func (s *CacheService) InvalidateGroup(ctx context.Context, groupID string) error {
	if !s.Enabled() {
		return nil
	}
	return s.store.Delete(ctx, conflictReportKey(groupID))
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/models"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
)

type cacheStoreStub struct {
	data    map[string][]byte
	deleted []string
	ttls    map[string]time.Duration
}

func newCacheStoreStub() *cacheStoreStub {
	return &cacheStoreStub{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *cacheStoreStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStoreStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	s.ttls[key] = ttl
	return nil
}

func (s *cacheStoreStub) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	store := newCacheStoreStub()
	svc := NewCacheService(store, nil, time.Minute, nil, true)
	ctx := context.Background()

	var miss models.ConflictReport
	assert.False(t, svc.GetConflictReport(ctx, "group-1", &miss))

	svc.SetConflictReport(ctx, "group-1", models.ConflictReport{GroupID: "group-1", Total: 2})

	var hit models.ConflictReport
	require.True(t, svc.GetConflictReport(ctx, "group-1", &hit))
	assert.Equal(t, "group-1", hit.GroupID)
	assert.Equal(t, 2, hit.Total)
	assert.Equal(t, time.Minute, store.ttls["conflicts:group:group-1"])
}

func TestCacheServiceInvalidateGroup(t *testing.T) {
	store := newCacheStoreStub()
	svc := NewCacheService(store, nil, time.Minute, nil, true)
	ctx := context.Background()

	svc.SetConflictReport(ctx, "group-1", models.ConflictReport{GroupID: "group-1"})
	require.NoError(t, svc.InvalidateGroup(ctx, "group-1"))

	assert.Equal(t, []string{"conflicts:group:group-1"}, store.deleted)
	var out models.ConflictReport
	assert.False(t, svc.GetConflictReport(ctx, "group-1", &out))
}

func TestCacheServiceDisabledIsPassThrough(t *testing.T) {
	store := newCacheStoreStub()
	svc := NewCacheService(store, nil, time.Minute, nil, false)
	ctx := context.Background()

	svc.SetConflictReport(ctx, "group-1", models.ConflictReport{GroupID: "group-1"})
	assert.Empty(t, store.data)

	var out models.ConflictReport
	assert.False(t, svc.GetConflictReport(ctx, "group-1", &out))
	require.NoError(t, svc.InvalidateGroup(ctx, "group-1"))
}

func TestCacheServiceNilReceiverIsSafe(t *testing.T) {
	var svc *CacheService

	assert.False(t, svc.Enabled())
}

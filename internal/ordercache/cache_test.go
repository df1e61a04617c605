package ordercache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/pkg/logger"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) RecentOrders(ctx context.Context, customerID domain.CustomerID, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, customerID, limit)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordCacheLookup(cache, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func ordersFor(customer domain.CustomerID, numbers ...string) []domain.Order {
	out := make([]domain.Order, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, domain.Order{SalesOrderNumber: n, CustomerID: customer})
	}
	return out
}

func TestGetRecentOrders_HitWithinTTL(t *testing.T) {
	f := &mockFetcher{}
	clock := newTestClock()
	rec := &countingRecorder{}
	cache := New(f, 10*time.Minute, logger.NewNop(), WithClock(clock.Now), WithRecorder(rec))
	ctx := context.Background()

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1024", "1023"), nil).Once()

	first, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	second, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.AssertNumberOfCalls(t, "RecentOrders", 1)
	assert.Equal(t, map[string]int{"miss": 1, "hit": 1}, rec.counts)
}

func TestGetRecentOrders_KeyIsCaseInsensitive(t *testing.T) {
	f := &mockFetcher{}
	cache := New(f, time.Minute, logger.NewNop())
	ctx := context.Background()

	f.On("RecentOrders", ctx, mock.Anything, 15).Return(ordersFor("ACME01", "1"), nil).Once()

	_, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	_, err = cache.GetRecentOrders(ctx, " acme01", 15)
	require.NoError(t, err)

	f.AssertNumberOfCalls(t, "RecentOrders", 1)
}

func TestGetRecentOrders_ExpiryTriggersExactlyOneFetch(t *testing.T) {
	f := &mockFetcher{}
	clock := newTestClock()
	cache := New(f, 10*time.Minute, logger.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1023"), nil).Once()
	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1024", "1023"), nil).Once()

	_, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	fresh, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	again, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	assert.Equal(t, fresh, again)

	f.AssertNumberOfCalls(t, "RecentOrders", 2)
}

func TestGetRecentOrders_FailureIsNotCached(t *testing.T) {
	f := &mockFetcher{}
	rec := &countingRecorder{}
	cache := New(f, time.Minute, logger.NewNop(), WithRecorder(rec))
	ctx := context.Background()
	upstream := errors.New("suiteql unavailable")

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(nil, upstream).Once()
	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1023"), nil).Once()

	_, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 0, cache.Len())

	orders, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, rec.counts["error"])
	f.AssertNumberOfCalls(t, "RecentOrders", 2)
}

func TestGetRecentOrders_DefaultPageSize(t *testing.T) {
	f := &mockFetcher{}
	cache := New(f, 0, logger.NewNop())
	ctx := context.Background()

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), DefaultPageSize).Return(ordersFor("ACME01"), nil).Once()

	_, err := cache.GetRecentOrders(ctx, "ACME01", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, cache.ttl)
	f.AssertExpectations(t)
}

func TestGetRecentOrders_CallerCannotMutateCache(t *testing.T) {
	f := &mockFetcher{}
	cache := New(f, time.Minute, logger.NewNop())
	ctx := context.Background()

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1023"), nil).Once()

	first, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	first[0].SalesOrderNumber = "changed"

	second, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	assert.Equal(t, "1023", second[0].SalesOrderNumber)
}

func TestInvalidate_AllPageSizesOfOneCustomer(t *testing.T) {
	f := &mockFetcher{}
	cache := New(f, time.Hour, logger.NewNop())
	ctx := context.Background()

	f.On("RecentOrders", ctx, mock.Anything, mock.Anything).Return(ordersFor("X", "1"), nil)

	for _, size := range []int{5, 15, 50} {
		_, err := cache.GetRecentOrders(ctx, "ACME01", size)
		require.NoError(t, err)
	}
	_, err := cache.GetRecentOrders(ctx, "GLOBEX", 15)
	require.NoError(t, err)
	require.Equal(t, 4, cache.Len())

	removed := cache.Invalidate("acme01")
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, cache.Len())

	calls := len(f.Calls)
	_, err = cache.GetRecentOrders(ctx, "GLOBEX", 15)
	require.NoError(t, err)
	assert.Len(t, f.Calls, calls, "other customers keep their entries")

	_, err = cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)
	assert.Len(t, f.Calls, calls+1, "invalidated customer is refetched")
}

func TestInvalidate_Empty(t *testing.T) {
	cache := New(&mockFetcher{}, time.Minute, logger.NewNop())
	assert.Equal(t, 0, cache.Invalidate("ACME01"))
}

func TestExpiredEntryIsEvictedOnAccess(t *testing.T) {
	f := &mockFetcher{}
	clock := newTestClock()
	cache := New(f, time.Minute, logger.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(ordersFor("ACME01", "1"), nil).Once()
	f.On("RecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(nil, errors.New("down")).Once()

	_, err := cache.GetRecentOrders(ctx, "ACME01", 15)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = cache.GetRecentOrders(ctx, "ACME01", 15)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len(), "stale entry must not survive a failed refresh")
}

func TestConcurrentAccess(t *testing.T) {
	f := &mockFetcher{}
	cache := New(f, time.Minute, logger.NewNop(), WithRecorder(&countingRecorder{}))
	ctx := context.Background()

	f.On("RecentOrders", ctx, mock.Anything, mock.Anything).Return(ordersFor("ACME01", "1", "2"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			customer := domain.CustomerID("ACME01")
			if i%2 == 0 {
				customer = "GLOBEX"
			}
			if i%10 == 0 {
				cache.Invalidate(customer)
				return
			}
			orders, err := cache.GetRecentOrders(ctx, customer, 15)
			assert.NoError(t, err)
			assert.Len(t, orders, 2)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 2)
}

// Package ordercache хранит последние заказы клиента с ограниченным сроком жизни.
package ordercache

import (
	"context"
	"slices"
	"sync"
	"time"

	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/pkg/logger"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultPageSize = 15

	cacheName = "recent_orders"
)

// Fetcher загружает последние заказы клиента из источника
type Fetcher interface {
	RecentOrders(ctx context.Context, customerID domain.CustomerID, limit int) ([]domain.Order, error)
}

// Recorder учитывает попадания и промахи
type Recorder interface {
	RecordCacheLookup(cache, result string)
}

type key struct {
	customer string
	pageSize int
}

type entry struct {
	orders    []domain.Order
	expiresAt time.Time
}

// Cache кеш последних заказов по ключу (клиент, размер страницы).
// Мьютекс не удерживается во время загрузки: параллельные промахи по одному
// ключу могут загрузить данные дважды, последняя запись побеждает.
type Cache struct {
	mu      sync.Mutex
	entries map[key]entry

	fetcher  Fetcher
	ttl      time.Duration
	now      func() time.Time
	log      logger.Logger
	recorder Recorder
}

// Option настройка кеша
type Option func(*Cache)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithRecorder подключает метрики
func WithRecorder(r Recorder) Option {
	return func(c *Cache) {
		c.recorder = r
	}
}

// New создает кеш. ttl <= 0 означает DefaultTTL.
func New(fetcher Fetcher, ttl time.Duration, log logger.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[key]entry),
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRecentOrders возвращает заказы из кеша или загружает их.
// Ошибка загрузки не кешируется и возвращается вызывающему.
func (c *Cache) GetRecentOrders(ctx context.Context, customerID domain.CustomerID, pageSize int) ([]domain.Order, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	k := key{customer: customerID.Key(), pageSize: pageSize}

	if orders, ok := c.lookup(k); ok {
		c.record("hit")
		c.log.Debug("Order cache hit",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()),
			logger.Int("page_size", pageSize))
		return orders, nil
	}

	c.log.Debug("Order cache miss",
		logger.CtxField(ctx),
		logger.String("customer_id", customerID.String()),
		logger.Int("page_size", pageSize))

	orders, err := c.fetcher.RecentOrders(ctx, customerID, pageSize)
	if err != nil {
		c.record("error")
		return nil, err
	}
	c.record("miss")

	c.mu.Lock()
	c.entries[k] = entry{orders: slices.Clone(orders), expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return orders, nil
}

func (c *Cache) lookup(k key) ([]domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		return nil, false
	}
	return slices.Clone(e.orders), true
}

// Invalidate удаляет все записи клиента независимо от размера страницы.
// Возвращает число удаленных записей.
func (c *Cache) Invalidate(customerID domain.CustomerID) int {
	customer := customerID.Key()

	c.mu.Lock()
	removed := 0
	for k := range c.entries {
		if k.customer == customer {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	c.log.Info("Order cache cleared",
		logger.String("customer_id", customerID.String()),
		logger.Int("entries", removed))
	return removed
}

// Len число записей, включая еще не вытесненные просроченные
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(cacheName, result)
	}
}

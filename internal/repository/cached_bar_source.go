package repository

import (
	"context"
	"errors"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	pkgcache "github.com/quantfra/swingdesk/pkg/cache"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// CachedBarSource wraps a BarSource with a read-through cache so scan
// fan-outs do not hammer the provider for the same series. Errors from
// the cache degrade to a provider fetch, never to a failure.
type CachedBarSource struct {
	next  domrepo.BarSource
	cache pkgcache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedBarSource(next domrepo.BarSource, cache pkgcache.Service, ttl time.Duration) *CachedBarSource {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedBarSource{next: next, cache: cache, ttl: ttl}
}

// SetLogger injects a structured logger.
func (s *CachedBarSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CachedBarSource) GetHistory(ctx context.Context, symbol string, lookback int, interval domrepo.Interval) ([]models.PriceBar, error) {
	key := pkgcache.GenerateKeyWithParams("bars", symbol, string(interval), lookback)
	var cached []models.PriceBar
	if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil && !errors.Is(err, pkgcache.ErrCacheMiss) && s.l != nil {
		s.l.Warn("bar cache get error", applogger.String("key", key), applogger.Error(err))
	}

	bars, err := s.next.GetHistory(ctx, symbol, lookback, interval)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, bars, s.ttl); err != nil && s.l != nil {
		s.l.Warn("bar cache set error", applogger.String("key", key), applogger.Error(err))
	}
	return bars, nil
}

func (s *CachedBarSource) Health(ctx context.Context) error { return s.next.Health(ctx) }

func (s *CachedBarSource) Close() error { return s.next.Close() }

var _ domrepo.BarSource = (*CachedBarSource)(nil)

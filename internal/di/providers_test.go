package di

import (
	"context"
	"testing"
	"time"

	internalrepo "github.com/quantfra/swingdesk/internal/repository"
	"github.com/quantfra/swingdesk/pkg/config"
)

func TestProvideCacheServiceFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{}
	svc, err := ProvideCacheService(cfg)
	if err != nil {
		t.Fatalf("ProvideCacheService: %v", err)
	}
	if svc == nil {
		t.Fatal("want an in-process cache when redis is disabled, got nil")
	}

	ctx := context.Background()
	if err := svc.Set(ctx, "k", []int{1, 2, 3}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out []int
	if err := svc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("round trip = %v, want 3 elements", out)
	}
}

func TestProvideBarSourceIsCachedWithoutRedis(t *testing.T) {
	cfg := &config.Config{}
	cfg.Provider.Backend = "http"
	cfg.Provider.BaseURL = "http://127.0.0.1:9"

	cacheSvc, err := ProvideCacheService(cfg)
	if err != nil {
		t.Fatalf("ProvideCacheService: %v", err)
	}
	src, err := ProvideBarSource(cfg, nil, cacheSvc, nil)
	if err != nil {
		t.Fatalf("ProvideBarSource: %v", err)
	}
	if _, ok := src.(*internalrepo.CachedBarSource); !ok {
		t.Fatalf("bar source = %T, want the cached decorator", src)
	}
}

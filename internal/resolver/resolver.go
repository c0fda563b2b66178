// Package resolver turns free-form object names into celestial coordinates.
// Two providers exist: the catalogue's own name resolution operation and the
// external Sesame service. Results are cached with a configurable TTL since
// name positions effectively never change within a session.
package resolver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/logging"
)

// Package-level logger for the resolver service
var (
	resolverLogger   *slog.Logger
	resolverLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	resolverLevelVar.Set(slog.LevelDebug)

	resolverLogger, _, err = logging.NewFileLogger("logs/resolver.log", "resolver", resolverLevelVar)
	if err != nil {
		logging.Error("Failed to initialize resolver file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: resolverLevelVar})
		resolverLogger = slog.New(fbHandler).With("service", "resolver")
	}
}

const defaultCacheTTL = 6 * time.Hour

// Result is a resolved name lookup.
type Result struct {
	Query      string  // the name as asked
	Canonical  string  // the resolver's canonical designation
	RA         float64 // degrees, J2000
	Dec        float64 // degrees, J2000
	Provenance string  // human-readable origin of the coordinates
	Provider   string  // which provider answered
}

// Provider resolves one free-form name.
type Provider interface {
	Resolve(ctx context.Context, name string) (*Result, error)
}

// Service wraps a provider with caching.
type Service struct {
	provider Provider
	cache    *cache.Cache

	metrics struct {
		lookups     int64
		cacheHits   int64
		cacheMisses int64
		mu          sync.RWMutex
	}
}

// NewService creates a resolver service with the provider selected in the
// settings. client is required for the catalogue provider and ignored by
// the others.
func NewService(settings *conf.Settings, client *api.Client) (*Service, error) {
	var provider Provider

	switch settings.Resolver.Provider {
	case conf.ResolverCatalogue:
		if client == nil {
			return nil, errors.Newf("catalogue resolver requires an API client").
				Component("resolver").
				Category(errors.CategoryConfiguration).
				Build()
		}
		provider = NewCatalogueProvider(client)
	case conf.ResolverSesame:
		provider = NewSesameProvider(settings.Resolver.SesameURL)
	default:
		return nil, errors.Newf("invalid resolver provider: %s", settings.Resolver.Provider).
			Component("resolver").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Resolver.Provider).
			Build()
	}

	ttl := settings.Resolver.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	resolverLogger.Info("resolver service initialized",
		"provider", settings.Resolver.Provider,
		"cache_ttl", ttl)

	return &Service{
		provider: provider,
		cache:    cache.New(ttl, ttl*2),
	}, nil
}

// NewServiceWithProvider creates a resolver service around a fixed provider.
func NewServiceWithProvider(provider Provider, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		provider: provider,
		cache:    cache.New(ttl, ttl*2),
	}
}

// Resolve looks a name up, serving repeats from the cache. Lookups are
// keyed case-insensitively; the returned Query keeps the caller's spelling.
func (s *Service) Resolve(ctx context.Context, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Newf("empty name").
			Category(errors.CategoryValidation).
			Component("resolver").
			Build()
	}

	s.metrics.mu.Lock()
	s.metrics.lookups++
	s.metrics.mu.Unlock()

	cacheKey := "resolve:" + strings.ToLower(name)
	if cached, found := s.cache.Get(cacheKey); found {
		if result, ok := cached.(*Result); ok {
			s.metrics.mu.Lock()
			s.metrics.cacheHits++
			s.metrics.mu.Unlock()

			resolverLogger.Debug("name resolution cache hit",
				"name", name,
				"canonical", result.Canonical)
			hit := *result
			hit.Query = name
			return &hit, nil
		}
	}

	s.metrics.mu.Lock()
	s.metrics.cacheMisses++
	s.metrics.mu.Unlock()

	result, err := s.provider.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	result.Query = name

	s.cache.Set(cacheKey, result, cache.DefaultExpiration)

	resolverLogger.Debug("name resolved",
		"name", name,
		"canonical", result.Canonical,
		"ra", result.RA,
		"dec", result.Dec,
		"provider", result.Provider)

	return result, nil
}

// ClearCache drops all cached resolutions.
func (s *Service) ClearCache() {
	s.cache.Flush()
	resolverLogger.Info("resolver cache cleared")
}

// Metrics represents resolver counters.
type Metrics struct {
	Lookups     int64 `json:"lookups"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
}

// GetMetrics returns current resolver metrics.
func (s *Service) GetMetrics() Metrics {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()
	return Metrics{
		Lookups:     s.metrics.lookups,
		CacheHits:   s.metrics.cacheHits,
		CacheMisses: s.metrics.cacheMisses,
	}
}

// Package sxcat is the public client for the SXCAT X-ray source catalogue.
// It bundles the query endpoint, name resolution, product downloads and an
// optional persistent cache behind one Client, and hands results back as the
// domain types of pkg/catalogue and pkg/lightcurve.
//
// Callers identify objects with catalogue.Target values. Single-object
// methods return the record directly and fail on identifiers that fragment
// into several current sources; batch methods return a map keyed by the
// caller's own targets, with fragmentation reported per key.
package sxcat

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/datastore"
	"github.com/tphakala/sxcat-go/internal/download"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/logging"
	"github.com/tphakala/sxcat-go/internal/observability"
	"github.com/tphakala/sxcat-go/internal/observability/metrics"
	"github.com/tphakala/sxcat-go/internal/resolver"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/lightcurve"
)

// Package-level logger specific to the facade
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "client.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "client", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize client file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "client")
		closeLogger = func() error { return nil }
	}
}

// How long a fetched catalogue revision is trusted before the next staleness
// check asks the service again.
const revisionMemoWindow = 30 * time.Second

const (
	defaultPollInterval = 5 * time.Second
	defaultWaitCap      = 10 * time.Minute
)

// Options configures a Client. The zero value works and talks to the public
// service with its documented defaults.
type Options struct {
	// BaseURL is the query endpoint root.
	BaseURL string
	// APIKey authenticates requests. Empty means anonymous quota.
	APIKey string
	// UserAgent overrides the client identification header.
	UserAgent string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64
	// Burst is the rate limiter burst size.
	Burst int

	// Flavour selects the catalogue generation. Defaults to the live
	// catalogue.
	Flavour catalogue.Flavour
	// DetectionThreshold is the confidence level, in sigma, separating
	// retrospective detections from non-detections in light curves. Zero
	// means the server's reporting level.
	DetectionThreshold float64
	// ConeRadiusArcsec is the search radius for position targets.
	ConeRadiusArcsec float64
	// Binning selects the light curve time resolution. Defaults to
	// per-observation bins.
	Binning lightcurve.Binning
	// TimeFormat selects the light curve time system. Defaults to MJD.
	TimeFormat lightcurve.TimeFormat
	// Grouping controls how light curve bins are partitioned into named
	// series. Nil means the server-documented default grouping.
	Grouping *lightcurve.GroupingPolicy

	// ResolverProvider picks the name resolution backend, "catalogue" or
	// "sesame".
	ResolverProvider string
	// SesameURL is the Sesame endpoint for the sesame provider.
	SesameURL string
	// ResolverCacheTTL bounds the in-memory name resolution cache.
	ResolverCacheTTL time.Duration

	// EnableCache turns the persistent identifier cache on.
	EnableCache bool
	// CachePath is the persistent cache database file.
	CachePath string
	// CacheTTL bounds the age of persistent cache entries. Zero keeps
	// entries until the catalogue revision moves.
	CacheTTL time.Duration

	// DestDir is the root directory product files are saved under.
	DestDir string
	// Clobber overwrites existing files on save. Off, existing files are
	// skipped.
	Clobber bool
	// Parallel bounds concurrent product downloads.
	Parallel int
	// PreferFTP asks for table dump URLs on the FTP mirror.
	PreferFTP bool

	// PollInterval is the delay between upper-limit job polls.
	PollInterval time.Duration

	// TelemetryListen starts a Prometheus metrics endpoint on this address
	// when non-empty. The endpoint serves this client's collectors and stops
	// when the client closes.
	TelemetryListen string
}

func (o Options) withDefaults() Options {
	if o.Flavour == "" {
		o.Flavour = catalogue.FlavourLive
	}
	if o.ConeRadiusArcsec <= 0 {
		o.ConeRadiusArcsec = 3.0
	}
	if o.Binning == "" {
		o.Binning = lightcurve.BinningObservation
	}
	if o.TimeFormat == "" {
		o.TimeFormat = lightcurve.TimeMJD
	}
	if o.ResolverProvider == "" {
		o.ResolverProvider = conf.ResolverCatalogue
	}
	if o.CachePath == "" {
		o.CachePath = "sxcat-cache.db"
	}
	if o.DestDir == "" {
		o.DestDir = "."
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	return o
}

// OptionsFromSettings maps loaded settings onto client options.
func OptionsFromSettings(settings *conf.Settings) Options {
	var o Options
	if settings == nil {
		return o.withDefaults()
	}
	o.BaseURL = settings.API.BaseURL
	o.APIKey = settings.API.APIKey
	o.UserAgent = settings.API.UserAgent
	o.Timeout = settings.API.Timeout
	o.RateLimit = settings.API.RateLimit
	o.Burst = settings.API.Burst
	o.Flavour = catalogue.Flavour(settings.Catalogue.Flavour)
	o.DetectionThreshold = settings.Catalogue.DetectionThreshold
	o.ConeRadiusArcsec = settings.Catalogue.ConeRadiusArcsec
	o.ResolverProvider = settings.Resolver.Provider
	o.SesameURL = settings.Resolver.SesameURL
	o.ResolverCacheTTL = settings.Resolver.CacheTTL
	o.EnableCache = settings.Cache.Enabled
	o.CachePath = settings.Cache.Path
	o.CacheTTL = settings.Cache.TTL
	o.DestDir = settings.Download.DestDir
	o.Clobber = settings.Download.Clobber
	o.Parallel = settings.Download.Parallel
	o.PreferFTP = settings.Download.PreferFTP
	if settings.Telemetry.Enabled {
		o.TelemetryListen = settings.Telemetry.Listen
	}
	return o.withDefaults()
}

// Client is the catalogue client. Create one with New or NewFromSettings and
// release it with Close. Methods are safe for concurrent use.
type Client struct {
	options   Options
	api       *api.Client
	resolver  *resolver.Service
	downloads *download.Manager
	store     *datastore.Store // nil unless the persistent cache is enabled
	metrics   *observability.Metrics
	telemetry *observability.Endpoint // nil unless a telemetry listen address is set

	revMu      sync.Mutex
	revValue   int64
	revFetched time.Time
}

// New creates a client from options.
func New(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	apiClient, err := api.NewClient(api.Config{
		BaseURL:   opts.BaseURL,
		APIKey:    opts.APIKey,
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		RateLimit: opts.RateLimit,
		Burst:     opts.Burst,
		Flavour:   opts.Flavour,
	})
	if err != nil {
		return nil, err
	}

	m, err := observability.NewMetrics()
	if err != nil {
		apiClient.Close()
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Component("client").
			Build()
	}

	var provider resolver.Provider
	switch opts.ResolverProvider {
	case conf.ResolverCatalogue:
		provider = resolver.NewCatalogueProvider(apiClient)
	case conf.ResolverSesame:
		provider = resolver.NewSesameProvider(opts.SesameURL)
	default:
		apiClient.Close()
		return nil, errors.Newf("invalid resolver provider: %s", opts.ResolverProvider).
			Category(errors.CategoryConfiguration).
			Component("client").
			Build()
	}

	downloads := download.NewManager(download.Config{
		DestDir:  opts.DestDir,
		Clobber:  opts.Clobber,
		Parallel: opts.Parallel,
		Timeout:  opts.Timeout,
	})

	var store *datastore.Store
	if opts.EnableCache {
		store, err = datastore.Open(opts.CachePath, opts.CacheTTL)
		if err != nil {
			downloads.Close()
			apiClient.Close()
			return nil, err
		}
	}

	c := &Client{
		options:   opts,
		api:       apiClient,
		resolver:  resolver.NewServiceWithProvider(provider, opts.ResolverCacheTTL),
		downloads: downloads,
		store:     store,
		metrics:   m,
	}
	apiClient.SetCallObserver(func(op string, duration time.Duration, err error) {
		observeCall(m.API, op, duration, err)
	})

	if opts.TelemetryListen != "" {
		endpoint := observability.NewEndpoint(opts.TelemetryListen)
		if err := endpoint.Start(m); err != nil {
			if store != nil {
				store.Close()
			}
			downloads.Close()
			apiClient.Close()
			return nil, errors.New(err).
				Category(errors.CategoryConfiguration).
				Context("listen", opts.TelemetryListen).
				Component("client").
				Build()
		}
		c.telemetry = endpoint
	}

	logger.Info("client ready",
		"flavour", opts.Flavour,
		"resolver", opts.ResolverProvider,
		"persistent_cache", store != nil,
		"telemetry", opts.TelemetryListen != "",
		"dest_dir", opts.DestDir)

	return c, nil
}

// NewFromSettings creates a client from loaded settings.
func NewFromSettings(settings *conf.Settings) (*Client, error) {
	return New(OptionsFromSettings(settings))
}

// Close releases the client's network and database resources.
func (c *Client) Close() error {
	var err error
	if c.telemetry != nil {
		err = c.telemetry.Close()
	}

	c.api.Close()
	c.downloads.Close()

	if c.store != nil {
		if storeErr := c.store.Close(); err == nil {
			err = storeErr
		}
	}

	logger.Info("client closed")
	if closeLogger != nil {
		if logErr := closeLogger(); logErr != nil {
			log.Printf("Error closing client logger: %v", logErr)
		}
	}
	return err
}

// Flavour returns the catalogue flavour the client queries.
func (c *Client) Flavour() catalogue.Flavour { return c.options.Flavour }

// observeCall feeds a collector from the API client's call hook.
func observeCall(rec metrics.Recorder, op string, duration time.Duration, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		rec.RecordError(op, errorLabel(err))
	}
	rec.RecordOperation(op, status)
	rec.RecordDuration(op, duration.Seconds())
}

// errorLabel buckets an error into a low-cardinality metric label.
func errorLabel(err error) string {
	switch {
	case errors.IsNotFound(err):
		return "not-found"
	case errors.IsAmbiguous(err):
		return "ambiguous"
	case errors.IsPending(err):
		return "pending"
	case errors.IsConsumed(err):
		return "consumed"
	case errors.IsCategory(err, errors.CategoryValidation):
		return "validation"
	case errors.IsCategory(err, errors.CategoryConfiguration):
		return "configuration"
	case errors.IsCategory(err, errors.CategoryResponseParsing):
		return "parsing"
	case errors.IsCategory(err, errors.CategoryLimit):
		return "limit"
	case errors.IsCategory(err, errors.CategoryCancellation):
		return "cancelled"
	default:
		return "network"
	}
}

// catalogueRevision returns the service's current catalogue revision,
// memoized for a short window so cache staleness checks do not turn every
// lookup into two round trips.
func (c *Client) catalogueRevision(ctx context.Context) (int64, error) {
	c.revMu.Lock()
	if c.revValue > 0 && time.Since(c.revFetched) < revisionMemoWindow {
		rev := c.revValue
		c.revMu.Unlock()
		return rev, nil
	}
	c.revMu.Unlock()

	obj, err := c.api.Call(ctx, api.OpCatalogueRevision, nil)
	if err != nil {
		return 0, err
	}
	rev, err := obj.GetInt64("Revision")
	if err != nil {
		return 0, errors.New(err).
			Category(errors.CategoryResponseParsing).
			Context("field", "Revision").
			Component("client").
			Build()
	}

	c.revMu.Lock()
	c.revValue = rev
	c.revFetched = time.Now()
	c.revMu.Unlock()
	return rev, nil
}

// Collector exposes the client's prometheus collectors as one unit for
// registration on an application registry.
func (c *Client) Collector() prometheus.Collector {
	return c.metrics
}

// TelemetryAddr returns the bound address of the client's telemetry
// endpoint, nil when telemetry is off. With a configured port of zero this
// is where the kernel actually put the listener.
func (c *Client) TelemetryAddr() net.Addr {
	if c.telemetry == nil {
		return nil
	}
	return c.telemetry.Addr()
}

// Snapshot is a point-in-time view of the client's internal counters, for
// callers that do not run prometheus.
type Snapshot struct {
	APICalls            int64         `json:"api_calls"`
	APIErrors           int64         `json:"api_errors"`
	AvgCallDuration     time.Duration `json:"avg_call_duration"`
	ResolverLookups     int64         `json:"resolver_lookups"`
	ResolverCacheHits   int64         `json:"resolver_cache_hits"`
	ResolverCacheMisses int64         `json:"resolver_cache_misses"`
	CachedSources       int64         `json:"cached_sources"`
	CachedResolutions   int64         `json:"cached_resolutions"`
}

// Metrics returns a snapshot of the client's counters.
func (c *Client) Metrics() Snapshot {
	apiMetrics := c.api.GetMetrics()
	resolverMetrics := c.resolver.GetMetrics()

	snap := Snapshot{
		APICalls:            apiMetrics.APICalls,
		APIErrors:           apiMetrics.APIErrors,
		AvgCallDuration:     apiMetrics.AvgDuration,
		ResolverLookups:     resolverMetrics.Lookups,
		ResolverCacheHits:   resolverMetrics.CacheHits,
		ResolverCacheMisses: resolverMetrics.CacheMisses,
	}
	if c.store != nil {
		sources, resolutions, err := c.store.Counts()
		if err == nil {
			snap.CachedSources = sources
			snap.CachedResolutions = resolutions
		}
	}
	return snap
}

// PruneCache removes persistent cache entries older than the cache TTL and
// returns how many were dropped. A client without the persistent cache
// prunes nothing.
func (c *Client) PruneCache() (int64, error) {
	if c.store == nil {
		return 0, nil
	}
	removed, err := c.store.Prune()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.metrics.Cache.RecordCachePruned(removed)
	}
	c.updateCacheGauges()
	return removed, nil
}

func (c *Client) updateCacheGauges() {
	if c.store == nil {
		return
	}
	sources, resolutions, err := c.store.Counts()
	if err != nil {
		return
	}
	c.metrics.Cache.UpdateCacheEntries(cacheSources, sources)
	c.metrics.Cache.UpdateCacheEntries(cacheResolutions, resolutions)
}

// Cache names used as metric labels.
const (
	cacheSources     = "sources"
	cacheResolutions = "resolutions"
)

// Package api implements the low-level client for the catalogue query
// endpoint. Every operation is a single POST of an operation envelope; the
// package never retries on its own, so callers keep full control over
// polling and fault tolerance.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"github.com/k3a/html2text"
	"golang.org/x/time/rate"

	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/httpclient"
	"github.com/tphakala/sxcat-go/internal/logging"
)

// Package-level logger specific to the api service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "api.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "api", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize api file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "api")
		closeLogger = func() error { return nil }
	}
}

// CallObserver is invoked after every completed call, success or failure.
type CallObserver func(op string, duration time.Duration, err error)

// Client talks to the catalogue query endpoint.
type Client struct {
	config  Config
	http    *httpclient.Client
	limiter *rate.Limiter
	debug   bool

	firstCallMu sync.Once

	observerMu sync.RWMutex
	observer   CallObserver

	metrics struct {
		apiCalls      int64
		apiErrors     int64
		totalDuration time.Duration
		mu            sync.RWMutex
	}
}

// NewClient creates a query endpoint client.
func NewClient(config Config) (*Client, error) {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaults.RateLimit
	}
	if config.Burst <= 0 {
		config.Burst = defaults.Burst
	}
	if config.Flavour == "" {
		config.Flavour = defaults.Flavour
	}
	if !config.Flavour.Valid() {
		return nil, errors.Newf("unknown catalogue flavour %q", config.Flavour).
			Category(errors.CategoryConfiguration).
			Component("api").
			Build()
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return nil, errors.Newf("base URL must be http or https: %s", config.BaseURL).
			Category(errors.CategoryConfiguration).
			Component("api").
			Build()
	}

	settings := conf.GetSettings()
	debug := settings != nil && settings.Debug

	client := &Client{
		config: config,
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
			UserAgent:      config.UserAgent,
		}),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		debug:   debug,
	}

	logger.Info("catalogue client initialized",
		"base_url", config.BaseURL,
		"flavour", config.Flavour,
		"rate_limit", config.RateLimit,
		"burst", config.Burst,
		"debug", debug,
		"api_key_configured", config.APIKey != "")

	return client, nil
}

// Flavour returns the catalogue flavour the client queries.
func (c *Client) Flavour() string { return string(c.config.Flavour) }

// SetCallObserver installs a hook invoked after every call.
func (c *Client) SetCallObserver(fn CallObserver) {
	c.observerMu.Lock()
	c.observer = fn
	c.observerMu.Unlock()
}

func (c *Client) notifyObserver(op string, duration time.Duration, err error) {
	c.observerMu.RLock()
	fn := c.observer
	c.observerMu.RUnlock()
	if fn != nil {
		fn(op, duration, err)
	}
}

// Close releases the client's resources.
func (c *Client) Close() {
	c.http.Close()
	logger.Info("closing catalogue client")

	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing api logger: %v", err)
		}
	}
}

// envelope is the request body of every query operation.
type envelope struct {
	Op      string         `json:"op"`
	Flavour string         `json:"flavour"`
	RID     string         `json:"rid"`
	Params  map[string]any `json:"params,omitempty"`
}

// Call issues exactly one POST of the operation envelope and returns the
// parsed success payload. A pending job, a stale revision or a missing
// identifier all come back as categorized errors; the caller decides
// whether and when to call again.
func (c *Client) Call(ctx context.Context, op string, params map[string]any) (*jason.Object, error) {
	start := time.Now()
	payload, err := c.call(ctx, op, params)
	duration := time.Since(start)

	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	if err != nil {
		c.metrics.apiErrors++
	}
	c.metrics.totalDuration += duration
	c.metrics.mu.Unlock()

	c.notifyObserver(op, duration, err)
	return payload, err
}

func (c *Client) call(ctx context.Context, op string, params map[string]any) (*jason.Object, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryCancellation).
			Context("operation", op).
			Component("api").
			Build()
	}

	rid := uuid.New().String()[:8] // Using first 8 chars for brevity
	url := c.config.BaseURL + "/query"

	body, err := json.Marshal(envelope{
		Op:      op,
		Flavour: string(c.config.Flavour),
		RID:     rid,
		Params:  params,
	})
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryValidation).
			Context("operation", op).
			Component("api").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Newf("failed to create request: %w", err).
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Context("url", url).
			Component("api").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rid)
	if c.config.APIKey != "" {
		req.Header.Set("X-SXCAT-Key", c.config.APIKey)
	}

	if c.debug {
		logger.Debug("query request",
			"operation", op,
			"rid", rid,
			"flavour", c.config.Flavour)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		logger.Error("query request failed",
			"operation", op,
			"rid", rid,
			"error", err)
		return nil, errors.Newf("request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Context("rid", rid).
			Component("api").
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			_ = err
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Context("status_code", resp.StatusCode).
			Component("api").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(op, rid, resp.StatusCode, bodyBytes)
	}

	obj, err := jason.NewObjectFromBytes(bodyBytes)
	if err != nil {
		// Landing pages and proxy errors arrive as HTML; keep a readable
		// preview of whatever came back.
		preview := html2text.HTML2Text(string(bodyBytes))
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		logger.Error("query returned non-JSON body",
			"operation", op,
			"rid", rid,
			"content_type", resp.Header.Get("Content-Type"),
			"preview", preview)
		return nil, errors.Newf("service returned non-JSON response: %s", preview).
			Category(errors.CategoryResponseParsing).
			Context("operation", op).
			Context("rid", rid).
			Context("content_type", resp.Header.Get("Content-Type")).
			Component("api").
			Build()
	}

	if flag, flagErr := obj.GetInt64("ERROR"); flagErr == nil && flag == 1 {
		return nil, c.envelopeError(op, rid, obj)
	}
	if flag, flagErr := obj.GetInt64("OK"); flagErr != nil || flag != 1 {
		return nil, errors.Newf("response carries neither OK nor ERROR flag").
			Category(errors.CategoryResponseParsing).
			Context("operation", op).
			Context("rid", rid).
			Component("api").
			Build()
	}

	c.firstCallMu.Do(func() {
		logger.Info("catalogue endpoint reachable",
			"base_url", c.config.BaseURL,
			"flavour", c.config.Flavour,
			"first_operation", op)
	})

	if c.debug {
		logger.Debug("query response",
			"operation", op,
			"rid", rid,
			"response_size", len(bodyBytes))
	}

	return obj, nil
}

// statusError converts a non-200 response into a categorized error.
func (c *Client) statusError(op, rid string, statusCode int, body []byte) error {
	preview := html2text.HTML2Text(string(body))
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	if statusCode == 401 || statusCode == 403 {
		logger.Error("query authentication failed",
			"operation", op,
			"rid", rid,
			"status_code", statusCode,
			"api_key_configured", c.config.APIKey != "",
			"message", "Check your SXCAT API key in the configuration")
	} else {
		logger.Error("query HTTP error",
			"operation", op,
			"rid", rid,
			"status_code", statusCode,
			"preview", preview)
	}

	return errors.Newf("service error (status %d): %s", statusCode, preview).
		Category(categoryForStatus(statusCode)).
		Context("operation", op).
		Context("rid", rid).
		Context("status_code", statusCode).
		Component("api").
		Build()
}

// envelopeError converts an ERROR envelope into a categorized error
// wrapping the structured Error so callers can inspect the service code.
func (c *Client) envelopeError(op, rid string, obj *jason.Object) error {
	apiErr := &Error{Op: op, Status: http.StatusOK}
	apiErr.Code, _ = obj.GetString("error_code")
	apiErr.Text, _ = obj.GetString("error_text")

	level := slog.LevelWarn
	if apiErr.Code == CodeJobPending {
		// Pending jobs are normal while polling
		level = slog.LevelDebug
	}
	logger.Log(context.Background(), level, "query returned error envelope",
		"operation", op,
		"rid", rid,
		"error_code", apiErr.Code,
		"error_text", apiErr.Text)

	return errors.New(apiErr).
		Category(categoryForCode(apiErr.Code)).
		Context("operation", op).
		Context("rid", rid).
		Context("error_code", apiErr.Code).
		Component("api").
		Build()
}

// Metrics represents client performance counters.
type Metrics struct {
	APICalls      int64         `json:"api_calls"`
	APIErrors     int64         `json:"api_errors"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
}

// GetMetrics returns current client metrics.
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	metrics := Metrics{
		APICalls:      c.metrics.apiCalls,
		APIErrors:     c.metrics.apiErrors,
		TotalDuration: c.metrics.totalDuration,
	}
	if metrics.APICalls > 0 {
		metrics.AvgDuration = time.Duration(int64(metrics.TotalDuration) / metrics.APICalls)
	}
	return metrics
}

package api

import (
	"fmt"
	"time"

	"github.com/tphakala/sxcat-go/internal/buildinfo"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// Operation names of the query endpoint. Every client method funnels into
// Call with one of these.
const (
	OpGetSourceInfo     = "getSourceInfo"
	OpGetLightCurve     = "getLightCurve"
	OpGetSpectrum       = "getSpectrum"
	OpGetImages         = "getImages"
	OpGetTransient      = "getTransient"
	OpGetStackInfo      = "getStackInfo"
	OpResolveStack      = "resolveStack"
	OpResolveName       = "resolveName"
	OpResolvePosition   = "resolvePosition"
	OpSubmitUpperLimit  = "submitUpperLimit"
	OpJobStatus         = "jobStatus"
	OpFetchJob          = "fetchJob"
	OpCatalogueRevision = "getCatalogueRevision"
	OpGetTableURL       = "getTableURL"
)

// Error codes of the failure envelope.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"
	CodeInvalidParams     = "INVALID_PARAMS"
	CodeJobPending        = "JOB_PENDING"
	CodeJobConsumed       = "JOB_CONSUMED"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// codeCategories maps service error codes to error categories. Unknown
// codes fall back to the generic category.
var codeCategories = map[string]errors.ErrorCategory{
	CodeNotFound:          errors.CategoryNotFound,
	CodeInvalidIdentifier: errors.CategoryNotFound,
	CodeInvalidParams:     errors.CategoryValidation,
	CodeJobPending:        errors.CategoryPending,
	CodeJobConsumed:       errors.CategoryConsumed,
	CodeQuotaExceeded:     errors.CategoryLimit,
	CodeInternalError:     errors.CategoryNetwork,
}

func categoryForCode(code string) errors.ErrorCategory {
	if cat, ok := codeCategories[code]; ok {
		return cat
	}
	return errors.CategoryGeneric
}

// categoryForStatus maps HTTP status codes of failed requests to error
// categories. Authentication problems surface as configuration errors so
// they reach the user as "fix your API key", not as a network blip.
func categoryForStatus(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case 401, 403:
		return errors.CategoryConfiguration
	case 429:
		return errors.CategoryLimit
	case 404:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}

// Error is the structured failure envelope of the query endpoint.
type Error struct {
	Op     string `json:"op"`
	Code   string `json:"error_code"`
	Text   string `json:"error_text"`
	Status int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Text, e.Code)
}

// Config holds client configuration for the query endpoint.
type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64 // sustained requests per second
	Burst     int
	Flavour   catalogue.Flavour
}

// DefaultConfig returns the public service defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.sxcat.org",
		UserAgent: buildinfo.UserAgentSuffix(),
		Timeout:   60 * time.Second,
		RateLimit: 4.0,
		Burst:     4,
		Flavour:   catalogue.FlavourLive,
	}
}

// ConfigFromSettings builds a client config from the loaded settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	if settings == nil {
		return cfg
	}
	if settings.API.BaseURL != "" {
		cfg.BaseURL = settings.API.BaseURL
	}
	if settings.API.UserAgent != "" {
		cfg.UserAgent = settings.API.UserAgent
	}
	if settings.API.Timeout > 0 {
		cfg.Timeout = settings.API.Timeout
	}
	if settings.API.RateLimit > 0 {
		cfg.RateLimit = settings.API.RateLimit
	}
	if settings.API.Burst > 0 {
		cfg.Burst = settings.API.Burst
	}
	cfg.APIKey = settings.API.APIKey
	if f := catalogue.Flavour(settings.Catalogue.Flavour); f.Valid() {
		cfg.Flavour = f
	}
	return cfg
}

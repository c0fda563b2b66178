// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateAPISettings(&settings.API); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateCatalogueSettings(&settings.Catalogue); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateResolverSettings(&settings.Resolver); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDownloadSettings(&settings.Download); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateObserverSettings(&settings.Observer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLogConfig(&settings.Main.Log); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateAPISettings validates the API connection settings
func validateAPISettings(settings *APISettings) error {
	var errs []string

	if settings.BaseURL == "" {
		errs = append(errs, "API base URL must not be empty")
	} else {
		u, err := url.Parse(settings.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("API base URL %q must be a valid http or https URL", settings.BaseURL))
		}
	}

	if settings.Timeout < 0 {
		errs = append(errs, "API timeout must not be negative")
	}

	if settings.RateLimit < 0 {
		errs = append(errs, "API rate limit must not be negative")
	}

	if settings.Burst < 0 {
		errs = append(errs, "API burst must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("API settings errors: %v", errs)
	}
	return nil
}

// validateCatalogueSettings validates catalogue query defaults
func validateCatalogueSettings(settings *CatalogueSettings) error {
	var errs []string

	switch settings.Flavour {
	case FlavourLive, FlavourDR1, FlavourDR2:
	default:
		errs = append(errs, fmt.Sprintf("catalogue flavour %q is not one of live, dr1, dr2", settings.Flavour))
	}

	if settings.DetectionThreshold < 0 {
		errs = append(errs, "detection threshold must not be negative")
	}

	if settings.ConeRadiusArcsec <= 0 {
		errs = append(errs, "cone-search radius must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalogue settings errors: %v", errs)
	}
	return nil
}

// validateResolverSettings validates name resolution settings
func validateResolverSettings(settings *ResolverSettings) error {
	var errs []string

	switch settings.Provider {
	case ResolverCatalogue, ResolverSesame:
	default:
		errs = append(errs, fmt.Sprintf("resolver provider %q is not one of catalogue, sesame", settings.Provider))
	}

	if settings.Provider == ResolverSesame && settings.SesameURL == "" {
		errs = append(errs, "sesame resolver requires a sesame URL")
	}

	if settings.CacheTTL < 0 {
		errs = append(errs, "resolver cache TTL must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("resolver settings errors: %v", errs)
	}
	return nil
}

// validateDownloadSettings validates product saving settings
func validateDownloadSettings(settings *DownloadSettings) error {
	var errs []string

	if settings.DestDir == "" {
		errs = append(errs, "download destination directory must not be empty")
	}

	if settings.Parallel < 1 {
		errs = append(errs, "download parallelism must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("download settings errors: %v", errs)
	}
	return nil
}

// validateObserverSettings validates the ground site coordinates
func validateObserverSettings(settings *ObserverSettings) error {
	var errs []string

	if settings.Latitude < -90 || settings.Latitude > 90 {
		errs = append(errs, "observer latitude must be between -90 and 90")
	}

	if settings.Longitude < -180 || settings.Longitude > 180 {
		errs = append(errs, "observer longitude must be between -180 and 180")
	}

	if len(errs) > 0 {
		return fmt.Errorf("observer settings errors: %v", errs)
	}
	return nil
}

// validateTelemetrySettings validates the metrics endpoint settings
func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled && settings.Listen == "" {
		return fmt.Errorf("telemetry settings errors: [listen address must not be empty when telemetry is enabled]")
	}
	return nil
}

// validateLogConfig validates a log file configuration
func validateLogConfig(config *LogConfig) error {
	var errs []string

	if !config.Enabled {
		return nil
	}

	if config.Path == "" {
		errs = append(errs, "log path must not be empty when logging is enabled")
	}

	switch config.Rotation {
	case RotationDaily, RotationSize:
	case RotationWeekly:
		if _, err := ParseWeekday(config.RotationDay); err != nil {
			errs = append(errs, fmt.Sprintf("invalid rotation day %q: %v", config.RotationDay, err))
		}
	default:
		errs = append(errs, fmt.Sprintf("log rotation %q is not one of daily, weekly, size", config.Rotation))
	}

	if config.Rotation == RotationSize && config.MaxSize <= 0 {
		errs = append(errs, "log max size must be positive for size rotation")
	}

	if len(errs) > 0 {
		return fmt.Errorf("log settings errors: %v", strings.Join(errs, "; "))
	}
	return nil
}

// env.go - Environment variable configuration and validation for the sxcat client
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Service connection
		{"api.baseurl", "SXCAT_BASEURL", validateEnvURL},
		{"api.apikey", "SXCAT_APIKEY", nil},
		{"api.ratelimit", "SXCAT_RATELIMIT", validateEnvNonNegativeFloat},

		// Catalogue defaults
		{"catalogue.flavour", "SXCAT_FLAVOUR", validateEnvFlavour},
		{"catalogue.detectionthreshold", "SXCAT_THRESHOLD", validateEnvNonNegativeFloat},

		// Name resolution
		{"resolver.provider", "SXCAT_RESOLVER", validateEnvResolver},

		// Persistent cache
		{"cache.enabled", "SXCAT_CACHE_ENABLED", validateEnvBool},
		{"cache.path", "SXCAT_CACHE_PATH", nil},

		// Product saving
		{"download.destdir", "SXCAT_DESTDIR", nil},
		{"download.clobber", "SXCAT_CLOBBER", validateEnvBool},

		// Observer site
		{"observer.latitude", "SXCAT_LATITUDE", validateEnvLatitude},
		{"observer.longitude", "SXCAT_LONGITUDE", validateEnvLongitude},

		// Telemetry endpoint
		{"telemetry.enabled", "SXCAT_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.listen", "SXCAT_TELEMETRY_LISTEN", nil},

		// Debug
		{"debug", "SXCAT_DEBUG", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		// Bind the environment variable to the config key
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

func validateEnvFlavour(value string) error {
	switch strings.ToLower(value) {
	case FlavourLive, FlavourDR1, FlavourDR2:
		return nil
	default:
		return fmt.Errorf("flavour must be one of live, dr1, dr2, got %q", value)
	}
}

func validateEnvResolver(value string) error {
	switch strings.ToLower(value) {
	case ResolverCatalogue, ResolverSesame:
		return nil
	default:
		return fmt.Errorf("resolver must be one of catalogue, sesame, got %q", value)
	}
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	if f < 0 {
		return fmt.Errorf("value must be non-negative, got %g", f)
	}
	return nil
}

func validateEnvLatitude(value string) error {
	lat, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", lat)
	}
	return nil
}

func validateEnvLongitude(value string) error {
	lng, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", lng)
	}
	return nil
}

// config.go: settings struct for the sxcat client and functions to load and save settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly (as a string: "Sunday", "Monday", etc.)
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// Catalogue flavour names accepted by the remote service.
const (
	FlavourLive = "live"
	FlavourDR1  = "dr1"
	FlavourDR2  = "dr2"
)

// Name resolution provider names.
const (
	ResolverCatalogue = "catalogue"
	ResolverSesame    = "sesame"
)

// MainSettings holds instance naming and logging defaults.
type MainSettings struct {
	Name string    // client instance name used in log attributes
	Log  LogConfig // default rotation configuration for service log files
}

// APISettings configures the connection to the catalogue query endpoint.
type APISettings struct {
	BaseURL   string        // base URL of the catalogue data service
	UserAgent string        // User-Agent header, empty uses the built-in versioned identity
	Timeout   time.Duration // per-request timeout
	RateLimit float64       // max requests per second toward the service, 0 disables limiting
	Burst     int           // rate limiter burst size
	APIKey    string        // optional key for privileged operations
}

// CatalogueSettings holds catalogue-wide query defaults.
type CatalogueSettings struct {
	Flavour            string  // default catalogue flavour: live, dr1 or dr2
	DetectionThreshold float64 // retrospective detection threshold in sigma, 0 = server reporting level
	ConeRadiusArcsec   float64 // cone-search radius for positional lookups
}

// ResolverSettings configures free-form name resolution.
type ResolverSettings struct {
	Provider  string        // catalogue or sesame
	SesameURL string        // sesame endpoint used when provider is sesame
	CacheTTL  time.Duration // how long resolved names are kept in memory
}

// CacheSettings configures the optional persistent query cache.
type CacheSettings struct {
	Enabled bool          // true to enable the sqlite-backed query cache
	Path    string        // path to the sqlite database file
	TTL     time.Duration // max age before a cached record must be revalidated
}

// DownloadSettings configures product file saving.
type DownloadSettings struct {
	DestDir   string // default destination directory for saved products
	Clobber   bool   // true to overwrite existing files by default
	Parallel  int    // concurrent file writes during batch saves
	PreferFTP bool   // fetch full-table dumps from the FTP mirror when available
}

// ObserverSettings holds the ground site used for visibility calculations.
type ObserverSettings struct {
	Latitude  float64 // site latitude in decimal degrees
	Longitude float64 // site longitude in decimal degrees
}

// TelemetrySettings configures the optional Prometheus metrics endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose metrics over HTTP
	Listen  string // listen address for the telemetry endpoint
}

// Settings is the root configuration struct.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	API       APISettings
	Catalogue CatalogueSettings
	Resolver  ResolverSettings
	Cache     CacheSettings
	Download  DownloadSettings
	Observer  ObserverSettings
	Telemetry TelemetrySettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Get OS specific config paths
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Bind environment variable overrides
	// function defined in env.go
	if err := bindEnvVars(); err != nil {
		return fmt.Errorf("error binding environment variables: %w", err)
	}

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// Create directories for config file
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write default config file
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings saves the current settings to the configuration file.
// It uses SaveYAMLConfig to handle the atomic write process.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	settingsCopy := *settingsInstance

	// Find the path of the current config file
	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write the YAML data to a temporary file first so the replace is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	// Ensure the temporary file is removed in case of any failure
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	// Rename is atomic on most filesystems; fall back to copy & delete when it
	// fails (e.g. cross-device link)
	if err := os.Rename(tempFileName, configPath); err != nil {
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}

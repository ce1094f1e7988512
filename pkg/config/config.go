package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "SKYCACHE_"

// Config holds all configuration options for skycache
type Config struct {
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Vizier    VizierConfig    `yaml:"vizier" json:"vizier"`
	Gaia      GaiaConfig      `yaml:"gaia" json:"gaia"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry" json:"retry"`
	Merge     MergeConfig     `yaml:"merge" json:"merge"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Publish   PublishConfig   `yaml:"publish" json:"publish"`
}

// StorageConfig holds the local data layout root
type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir" validate:"required"`
}

// VizierConfig holds catalog query service settings
type VizierConfig struct {
	BaseURL  string   `yaml:"base_url" json:"base_url" validate:"required,url"`
	Catalogs []string `yaml:"catalogs" json:"catalogs" validate:"dive,required"`
}

// GaiaConfig holds directory listing download settings
type GaiaConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url" validate:"required,url"`
	Dataset    string `yaml:"dataset" json:"dataset" validate:"required,excludesall=/\\"`
	Suffix     string `yaml:"suffix" json:"suffix" validate:"required"`
	BufferSize int    `yaml:"buffer_size" json:"buffer_size" validate:"min=4096"`
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	Timeout               time.Duration `yaml:"timeout" json:"timeout" validate:"min=1s"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" json:"response_header_timeout" validate:"min=1s"`
	UserAgent             string        `yaml:"user_agent" json:"user_agent" validate:"required"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" validate:"gt=0"`
	BurstSize         int `yaml:"burst_size" json:"burst_size" validate:"gt=0"`
}

// RetryConfig holds backoff settings for transient failures
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts" validate:"min=1,max=20"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay" validate:"min=0s"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay" validate:"gtefield=InitialDelay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier" validate:"gte=1"`
}

// MergeConfig holds raw file parsing and merge progress settings
type MergeConfig struct {
	Delimiter     string   `yaml:"delimiter" json:"delimiter" validate:"len=1"`
	CommentPrefix string   `yaml:"comment_prefix" json:"comment_prefix" validate:"max=1"`
	NullValues    []string `yaml:"null_values" json:"null_values"`
	ProgressEvery int      `yaml:"progress_every" json:"progress_every" validate:"gt=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error disabled"`
	Format  string `yaml:"format" json:"format" validate:"omitempty,oneof=console json"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// PublishConfig holds object storage upload settings
type PublishConfig struct {
	BucketURL string `yaml:"bucket_url" json:"bucket_url"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Overwrite bool   `yaml:"overwrite" json:"overwrite"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Vizier: VizierConfig{
			BaseURL:  "https://vizier.cds.unistra.fr",
			Catalogs: []string{"B/vsx/vsx"},
		},
		Gaia: GaiaConfig{
			BaseURL:    "https://cdn.gea.esac.esa.int/Gaia/gdr3/gaia_source/",
			Dataset:    "gaia_source",
			Suffix:     ".csv.gz",
			BufferSize: 1 << 20,
		},
		HTTP: HTTPConfig{
			Timeout:               60 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			UserAgent:             "skycache/1.0",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         1,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
		Merge: MergeConfig{
			Delimiter:     ",",
			CommentPrefix: "#",
			NullValues:    []string{"", "null", "NaN"},
			ProgressEvery: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// CatalogDir is where catalog cache files live
func (c *Config) CatalogDir() string {
	return filepath.Join(c.Storage.DataDir, "catalogs")
}

// RawDir is the download directory for a dataset
func (c *Config) RawDir(dataset string) string {
	return filepath.Join(c.Storage.DataDir, "raw", dataset)
}

// MergedPath is the merged Parquet output for a dataset
func (c *Config) MergedPath(dataset string) string {
	return filepath.Join(c.Storage.DataDir, "merged", dataset+".parquet")
}

// ReportDir is where run reports are written
func (c *Config) ReportDir() string {
	return filepath.Join(c.Storage.DataDir, "reports")
}

// LoadFromEnv loads configuration from SKYCACHE_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	setString("DATA_DIR", &c.Storage.DataDir)
	setString("VIZIER_URL", &c.Vizier.BaseURL)
	if v := os.Getenv(EnvPrefix + "CATALOGS"); v != "" {
		c.Vizier.Catalogs = splitList(v)
	}
	setString("GAIA_URL", &c.Gaia.BaseURL)
	setString("GAIA_DATASET", &c.Gaia.Dataset)
	setDuration("HTTP_TIMEOUT", &c.HTTP.Timeout)
	setString("USER_AGENT", &c.HTTP.UserAgent)
	setInt("REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)
	setInt("RETRY_MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	setInt("PROGRESS_EVERY", &c.Merge.ProgressEvery)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)
	setString("LOG_FILE", &c.Logging.File)
	setString("BUCKET_URL", &c.Publish.BucketURL)
	setString("BUCKET_PREFIX", &c.Publish.Prefix)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".skycache.yaml",
		".skycache.yml",
		filepath.Join(home, ".config", "skycache", "config.yaml"),
		filepath.Join(home, ".config", "skycache", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every violation at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies flags that were explicitly set on the CLI
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Logging.NoColor = true
	}
	if bucket, ok := flags["bucket"].(string); ok && bucket != "" {
		c.Publish.BucketURL = bucket
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".skycache.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

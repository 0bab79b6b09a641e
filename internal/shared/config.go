package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Source   EndpointConfig `toml:"source"`
	Target   EndpointConfig `toml:"target"`
	Database DatabaseConfig `toml:"database"`
	Mongo    MongoConfig    `toml:"mongo"`
	Clone    CloneConfig    `toml:"clone"`
	Log      LogConfig      `toml:"log"`
}

// EndpointConfig holds the default connection descriptor for one side of a clone.
type EndpointConfig struct {
	URI string `toml:"uri"`
}

// DatabaseConfig contains settings for the local profile store.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MongoConfig contains driver options applied to every cluster connection.
type MongoConfig struct {
	AppName         string        `toml:"app_name"`
	ConnectTimeout  time.Duration `toml:"connect_timeout"`
	MaxPoolSize     uint64        `toml:"max_pool_size"`
	MinPoolSize     uint64        `toml:"min_pool_size"`
	MaxConnIdleTime time.Duration `toml:"max_conn_idle_time"`
	RetryReads      bool          `toml:"retry_reads"`
	RetryWrites     bool          `toml:"retry_writes"`
	Compressors     []string      `toml:"compressors"`
}

// CloneConfig contains cluster client and clone engine settings.
type CloneConfig struct {
	QueueSize int     `toml:"queue_size"` // Admission channel capacity per cluster client
	RateLimit float64 `toml:"rate_limit"` // Job starts per second, 0 for unlimited
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // Log destination while the TUI owns the terminal
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks value ranges that the TOML decoder cannot express.
func (c *Config) Validate() error {
	if c.Clone.QueueSize <= 0 {
		return fmt.Errorf("%w: clone.queue_size must be positive, got %d", ErrInvalidConfig, c.Clone.QueueSize)
	}
	if c.Clone.RateLimit < 0 {
		return fmt.Errorf("%w: clone.rate_limit must not be negative, got %v", ErrInvalidConfig, c.Clone.RateLimit)
	}
	if c.Mongo.MinPoolSize > c.Mongo.MaxPoolSize && c.Mongo.MaxPoolSize != 0 {
		return fmt.Errorf("%w: mongo.min_pool_size exceeds mongo.max_pool_size", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Avatars AvatarsConfig `yaml:"avatars"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig holds the remote backend service configuration
type BackendConfig struct {
	Endpoint          string `yaml:"endpoint"`
	Project           string `yaml:"project"`
	DatabaseID        string `yaml:"database_id"`
	UserCollection    string `yaml:"user_collection"`
	PostCollection    string `yaml:"post_collection"`
	SaveCollection    string `yaml:"save_collection"`
	CommentCollection string `yaml:"comment_collection"`
	FollowCollection  string `yaml:"follow_collection"`
	RealtimeEndpoint  string `yaml:"realtime_endpoint"`
	StateFile         string `yaml:"state_file"`
}

// StorageConfig holds file-bucket configuration
type StorageConfig struct {
	Region     string `yaml:"region"`
	Bucket     string `yaml:"bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`    // custom S3-compatible endpoint
	PublicBase string `yaml:"public_base"` // base URL for direct file view links
}

// AvatarsConfig holds the avatar-generation service configuration
type AvatarsConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// CacheConfig holds query-layer tuning
type CacheConfig struct {
	StaleAfter     time.Duration `yaml:"stale_after"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	VerifyInterval time.Duration `yaml:"verify_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.StaleAfter == 0 {
		c.Cache.StaleAfter = time.Minute
	}
	if c.Cache.SearchDebounce == 0 {
		c.Cache.SearchDebounce = 500 * time.Millisecond
	}
	if c.Cache.VerifyInterval == 0 {
		c.Cache.VerifyInterval = 30 * time.Second
	}
	if c.Backend.StateFile == "" {
		c.Backend.StateFile = ".pixify-state.json"
	}
}

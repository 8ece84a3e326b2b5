package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	ServiceName string          `yaml:"service_name"`
	Logging     LoggingConfig   `yaml:"logging"`
	Server      ServerConfig    `yaml:"server"`
	DealerAPI   DealerAPIConfig `yaml:"dealer_api"`
	Listing     ListingConfig   `yaml:"listing"`
	Session     SessionConfig   `yaml:"session"`
	Uploads     UploadsConfig   `yaml:"uploads"`
	MongoURI    string          `yaml:"mongo_uri"`
	MongoDBName string          `yaml:"mongo_db_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DealerAPIConfig describes the upstream dealership REST API.
type DealerAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a single request including reading the response headers.
	Timeout time.Duration `yaml:"timeout"`
	// TransportRetryDelay is the pause before the one automatic retry on
	// a request that got no response at all.
	TransportRetryDelay time.Duration `yaml:"transport_retry_delay"`
}

// ListingConfig controls the catalog search retry loop.
type ListingConfig struct {
	RetryDelay time.Duration `yaml:"retry_delay"`
	MaxRetries int           `yaml:"max_retries"`
}

type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	TTL          time.Duration `yaml:"ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type UploadsConfig struct {
	MaxImageBytes   int64 `yaml:"max_image_bytes"`
	MaxImagesPerCar int   `yaml:"max_images_per_car"`
}

// Load reads .env and config.yaml from the discovered base path and applies
// environment overrides and defaults.
func Load() (*AppConfig, error) {
	base := GetBasePath()
	_ = godotenv.Load(filepath.Join(base, ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(base, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case os.IsNotExist(err):
		// env-only deployments are allowed
	default:
		return nil, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("DEALER_API_BASE_URL"); v != "" {
		c.DealerAPI.BaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
}

func (c *AppConfig) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "car-passion-api"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.DealerAPI.Timeout <= 0 {
		c.DealerAPI.Timeout = 15 * time.Second
	}
	if c.DealerAPI.TransportRetryDelay <= 0 {
		c.DealerAPI.TransportRetryDelay = time.Second
	}
	if c.Listing.RetryDelay <= 0 {
		c.Listing.RetryDelay = 1500 * time.Millisecond
	}
	if c.Listing.MaxRetries <= 0 {
		c.Listing.MaxRetries = 2
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "cp_sid"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Uploads.MaxImageBytes <= 0 {
		c.Uploads.MaxImageBytes = 5 << 20
	}
	if c.Uploads.MaxImagesPerCar <= 0 {
		c.Uploads.MaxImagesPerCar = 10
	}
	if c.MongoDBName == "" {
		c.MongoDBName = "carpassion"
	}
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.DealerAPI.BaseURL) == "" {
		return fmt.Errorf("config: dealer_api.base_url is required")
	}
	return nil
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

package config

import "time"

// Config holds runtime settings for the uploader.
//
// Resize is enabled when either ResizeMaxWidth or ResizeMaxHeight is
// non-zero. ResizeQuality is in (0, 1].
type Config struct {
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	PublicBaseURL     string

	Bucket       string
	DatabasePath string

	MaxPerBatch   int
	Retries       int
	Backoff       time.Duration
	Concurrency   int
	UploadTimeout time.Duration

	ResizeMaxWidth  int
	ResizeMaxHeight int
	ResizeQuality   float64

	OnlineCheckInterval time.Duration
	MetricsAddr         string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Region = "us-east-1"
	c.S3UsePathStyle = true
	c.Bucket = "profile-photos"
	c.DatabasePath = "photoupload.db"
	c.MaxPerBatch = 6
	c.Retries = 2
	c.Backoff = 500 * time.Millisecond
	c.Concurrency = 1
	c.UploadTimeout = 60 * time.Second
	c.ResizeQuality = 0.8
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
}

// ResizeEnabled reports whether uploads should be downsized by default.
func (c *Config) ResizeEnabled() bool {
	return c.ResizeMaxWidth > 0 || c.ResizeMaxHeight > 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/photoupload/internal/flagx"
	"github.com/dmitrijs2005/photoupload/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent or zero
// fields leave the current value untouched.
type JsonConfig struct {
	S3Endpoint        string `json:"s3_endpoint"`
	S3Region          string `json:"s3_region"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3UsePathStyle    *bool  `json:"s3_use_path_style"`
	PublicBaseURL     string `json:"public_base_url"`

	Bucket       string `json:"bucket"`
	DatabasePath string `json:"database_path"`

	MaxPerBatch   int            `json:"max_per_batch"`
	Retries       *int           `json:"retries"`
	Backoff       timex.Duration `json:"backoff"`
	Concurrency   int            `json:"concurrency"`
	UploadTimeout timex.Duration `json:"upload_timeout"`

	ResizeMaxWidth  int     `json:"resize_max_width"`
	ResizeMaxHeight int     `json:"resize_max_height"`
	ResizeQuality   float64 `json:"resize_quality"`

	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	MetricsAddr         string         `json:"metrics_addr"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. It panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKeyID, jc.S3AccessKeyID)
	setString(&cfg.S3SecretAccessKey, jc.S3SecretAccessKey)
	if jc.S3UsePathStyle != nil {
		cfg.S3UsePathStyle = *jc.S3UsePathStyle
	}
	setString(&cfg.PublicBaseURL, jc.PublicBaseURL)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.DatabasePath, jc.DatabasePath)

	if jc.MaxPerBatch > 0 {
		cfg.MaxPerBatch = jc.MaxPerBatch
	}
	if jc.Retries != nil {
		cfg.Retries = *jc.Retries
	}
	if jc.Backoff.Duration > 0 {
		cfg.Backoff = jc.Backoff.Duration
	}
	if jc.Concurrency > 0 {
		cfg.Concurrency = jc.Concurrency
	}
	if jc.UploadTimeout.Duration > 0 {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}

	if jc.ResizeMaxWidth > 0 {
		cfg.ResizeMaxWidth = jc.ResizeMaxWidth
	}
	if jc.ResizeMaxHeight > 0 {
		cfg.ResizeMaxHeight = jc.ResizeMaxHeight
	}
	if jc.ResizeQuality > 0 {
		cfg.ResizeQuality = jc.ResizeQuality
	}

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

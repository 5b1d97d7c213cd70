package upload

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/photoupload/internal/models"
)

// Config holds the defaults every call starts from.
type Config struct {
	Bucket      string
	MaxPerBatch int
	Retries     int
	Backoff     time.Duration
	Concurrency int
	// Timeout bounds a single write attempt. Zero disables it.
	Timeout time.Duration
	Resize  *models.ResizeSpec
}

func DefaultConfig() Config {
	return Config{
		Bucket:      "profile-photos",
		MaxPerBatch: 6,
		Retries:     2,
		Backoff:     500 * time.Millisecond,
		Concurrency: 1,
		Timeout:     60 * time.Second,
	}
}

// Options is the resolved per-call configuration.
type Options struct {
	Bucket       string
	PathPrefix   string
	Max          int
	Retries      int
	Backoff      time.Duration
	Concurrency  int
	Timeout      time.Duration
	Resize       *models.ResizeSpec
	OnProgress   func(models.Progress)
	OnRetry      func(attempt int, err error)
	OfflineQueue bool

	maxPerBatch int
}

type Option func(*Options)

func WithBucket(bucket string) Option {
	return func(o *Options) { o.Bucket = bucket }
}

// WithPathPrefix overrides the owner-derived destination folder.
func WithPathPrefix(prefix string) Option {
	return func(o *Options) { o.PathPrefix = prefix }
}

// WithMax caps the batch size. The hint is clamped to [1, MaxPerBatch].
func WithMax(n int) Option {
	return func(o *Options) { o.Max = n }
}

func WithRetries(n int) Option {
	return func(o *Options) { o.Retries = n }
}

func WithBackoff(d time.Duration) Option {
	return func(o *Options) { o.Backoff = d }
}

func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithResize(spec models.ResizeSpec) Option {
	return func(o *Options) { o.Resize = &spec }
}

func WithOnProgress(fn func(models.Progress)) Option {
	return func(o *Options) { o.OnProgress = fn }
}

func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(o *Options) { o.OnRetry = fn }
}

// WithOfflineQueue toggles queueing of network-failed refs. It is on by default.
func WithOfflineQueue(enabled bool) Option {
	return func(o *Options) { o.OfflineQueue = enabled }
}

func (c Config) resolve(ownerID string, opts []Option) Options {
	maxPerBatch := c.MaxPerBatch
	if maxPerBatch < 1 {
		maxPerBatch = DefaultConfig().MaxPerBatch
	}

	o := Options{
		Bucket:       c.Bucket,
		PathPrefix:   ownerID,
		Max:          maxPerBatch,
		Retries:      c.Retries,
		Backoff:      c.Backoff,
		Concurrency:  c.Concurrency,
		Timeout:      c.Timeout,
		Resize:       c.Resize,
		OfflineQueue: true,
		maxPerBatch:  maxPerBatch,
	}
	for _, opt := range opts {
		opt(&o)
	}

	o.Max = clamp(o.Max, 1, maxPerBatch)
	o.Concurrency = max(o.Concurrency, 1)
	o.Retries = max(o.Retries, 0)
	o.Backoff = max(o.Backoff, 0)
	o.PathPrefix = strings.Trim(o.PathPrefix, "/")
	if o.PathPrefix == "" {
		o.PathPrefix = ownerID
	}
	return o
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

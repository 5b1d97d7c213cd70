package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/photoupload/internal/config"
	"github.com/dmitrijs2005/photoupload/internal/filex"
	"github.com/dmitrijs2005/photoupload/internal/kv"
	"github.com/dmitrijs2005/photoupload/internal/logging"
	"github.com/dmitrijs2005/photoupload/internal/models"
	"github.com/dmitrijs2005/photoupload/internal/pending"
	"github.com/dmitrijs2005/photoupload/internal/storage"
	"github.com/dmitrijs2005/photoupload/internal/transform"
	"github.com/dmitrijs2005/photoupload/internal/upload"
)

type Mode string

const (
	ModeOffline       Mode = "offline"
	ModeOnline        Mode = "online"
	ModeMisconfigured Mode = "no bucket"
)

type App struct {
	config   *config.Config
	service  upload.Service
	logger   logging.Logger
	db       *sql.DB
	registry *prometheus.Registry

	mu   sync.Mutex
	mode Mode

	in          io.Reader
	interactive bool
}

// NewApp opens the local database and the object store and builds the
// upload pipeline on top of them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := kv.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	s3, err := storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:        c.S3Endpoint,
		Region:          c.S3Region,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		PublicBaseURL:   c.PublicBaseURL,
		UsePathStyle:    c.S3UsePathStyle,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := storage.NewPrometheusObserver("photoupload", registry)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	store := storage.NewObservedStore(s3, observer)
	queue := pending.NewQueue(kv.NewSQLiteStore(db), logger)
	tr := transform.New(transform.ImagingBackend{}, logger)
	svc := upload.NewUploader(store, tr, queue, uploadConfig(c), logger)

	return &App{
		config:      c,
		service:     svc,
		logger:      logger,
		db:          db,
		registry:    registry,
		in:          os.Stdin,
		interactive: isTerminal(os.Stdin),
	}, nil
}

func uploadConfig(c *config.Config) upload.Config {
	uc := upload.Config{
		Bucket:      c.Bucket,
		MaxPerBatch: c.MaxPerBatch,
		Retries:     c.Retries,
		Backoff:     c.Backoff,
		Concurrency: c.Concurrency,
		Timeout:     c.UploadTimeout,
	}
	if c.ResizeEnabled() {
		uc.Resize = &models.ResizeSpec{
			MaxWidth:  c.ResizeMaxWidth,
			MaxHeight: c.ResizeMaxHeight,
			Quality:   c.ResizeQuality,
		}
	}
	return uc
}

// Run serves metrics when configured, starts the online watcher and blocks
// in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	if a.config.MetricsAddr != "" && a.registry != nil {
		go func() {
			if err := serveMetrics(ctx, a.config.MetricsAddr, a.registry); err != nil {
				a.logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", string(mode))
	}
}

// checkOnline classifies one bucket probe into a mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := a.service.Preflight(ctx, "")
	switch {
	case res.Status == upload.PreflightOK:
		a.setMode(ctx, ModeOnline)
	case res.Status == upload.PreflightFatal:
		a.setMode(ctx, ModeMisconfigured)
	case res.Kind == storage.KindNetwork:
		a.setMode(ctx, ModeOffline)
	default:
		// Reachable but the probe was refused; uploads may still work.
		a.setMode(ctx, ModeOnline)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	if m := a.Mode(); m != "" {
		return fmt.Sprintf("(%s)", m)
	}
	return ""
}

// Root runs the REPL over a.in.
func (a *App) Root(ctx context.Context) {
	printlnFn("Photo uploader (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in), a.interactive)
}

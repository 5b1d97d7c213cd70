package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for store operations.
type Observer interface {
	RecordList(duration time.Duration, err error)
	RecordListFolder(duration time.Duration, err error)
	RecordUpload(duration time.Duration, sizeBytes int, err error)
}

// PrometheusObserver exports store metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers the store metrics on reg. Collectors that are
// already registered are reused, so the constructor may run more than once.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "media_upload"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of object store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operation_errors_total",
			Help:      "Object store failures by operation and error kind.",
		}, []string{"operation", "kind"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully written to the object store.",
		}),
	}

	if err := reg.Register(o.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register store metric: %w", err)
		}
		o.duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	if err := reg.Register(o.errors); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register store metric: %w", err)
		}
		o.errors = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(o.uploadBytes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register store metric: %w", err)
		}
		o.uploadBytes = are.ExistingCollector.(prometheus.Counter)
	}

	return o, nil
}

func (o *PrometheusObserver) RecordList(duration time.Duration, err error) {
	o.record("list", duration, err)
}

func (o *PrometheusObserver) RecordListFolder(duration time.Duration, err error) {
	o.record("list_folder", duration, err)
}

func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int, err error) {
	o.record("upload", duration, err)
	if err == nil {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) record(op string, duration time.Duration, err error) {
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op, KindOf(err).String()).Inc()
	}
}

// ObservedStore decorates an ObjectStore with an Observer.
type ObservedStore struct {
	ObjectStore
	observer Observer
}

func NewObservedStore(store ObjectStore, observer Observer) *ObservedStore {
	return &ObservedStore{ObjectStore: store, observer: observer}
}

func (s *ObservedStore) List(ctx context.Context, bucket, prefix string, limit int) ([]Object, error) {
	start := time.Now()
	objs, err := s.ObjectStore.List(ctx, bucket, prefix, limit)
	s.observer.RecordList(time.Since(start), err)
	return objs, err
}

func (s *ObservedStore) ListFolder(ctx context.Context, bucket, folder string) ([]Object, error) {
	start := time.Now()
	objs, err := s.ObjectStore.ListFolder(ctx, bucket, folder)
	s.observer.RecordListFolder(time.Since(start), err)
	return objs, err
}

func (s *ObservedStore) Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	start := time.Now()
	err := s.ObjectStore.Upload(ctx, bucket, path, data, opts)
	s.observer.RecordUpload(time.Since(start), len(data), err)
	return err
}

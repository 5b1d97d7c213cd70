// Package upload turns batches of local images into public object-store URLs.
//
// A batch is truncated to the configured maximum, the bucket is probed once,
// and the jobs run on a bounded worker pool with per-write retries. Results
// keep submission order. When the network fails mid-batch the unfinished
// refs go to the offline queue instead of failing the call.
package upload

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photoupload/internal/logging"
	"github.com/dmitrijs2005/photoupload/internal/models"
	"github.com/dmitrijs2005/photoupload/internal/pending"
	"github.com/dmitrijs2005/photoupload/internal/storage"
	"github.com/dmitrijs2005/photoupload/internal/transform"
)

// Service is the surface the rest of the application uses.
type Service interface {
	UploadBatch(ctx context.Context, ownerID string, sourceRefs []string, opts ...Option) (*BatchResult, error)
	UploadSingle(ctx context.Context, ownerID, sourceRef string, opts ...Option) (string, error)
	EnqueuePendingUpload(ctx context.Context, ownerID string, sourceRefs []string) (models.PendingQueueEntry, error)
	ProcessPendingUploads(ctx context.Context, ownerID string, opts ...Option) (int, error)
	PendingUploads(ctx context.Context, ownerID string) ([]models.PendingQueueEntry, error)
	Preflight(ctx context.Context, bucket string) PreflightResult
}

type Transformer interface {
	Transform(ctx context.Context, sourceRef string, spec *models.ResizeSpec) (transform.Result, error)
}

// Queue is the offline durable queue.
type Queue interface {
	Enqueue(ctx context.Context, ownerID string, sourceRefs []string) (models.PendingQueueEntry, error)
	Entries(ctx context.Context, ownerID string) ([]models.PendingQueueEntry, error)
	Drain(ctx context.Context, ownerID string, upload pending.UploadFunc) (int, error)
}

// BatchResult is returned even when the batch failed part way, so callers
// can compare len(URLs) with the request size.
type BatchResult struct {
	URLs []string
	// PrimaryURL is URLs[0], or empty.
	PrimaryURL string
	Batch      *models.UploadBatch
	// Queued are the refs handed to the offline queue, in submission order.
	Queued  []string
	EntryID string
}

type Uploader struct {
	store       storage.ObjectStore
	transformer Transformer
	queue       Queue
	cfg         Config
	logger      logging.Logger
}

// NewUploader wires the pipeline. A nil queue disables offline queueing.
func NewUploader(store storage.ObjectStore, transformer Transformer, queue Queue, cfg Config, logger logging.Logger) *Uploader {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Uploader{
		store:       store,
		transformer: transformer,
		queue:       queue,
		cfg:         cfg,
		logger:      logger,
	}
}

func (u *Uploader) Preflight(ctx context.Context, bucket string) PreflightResult {
	if bucket == "" {
		bucket = u.cfg.Bucket
	}
	return Preflight(ctx, u.store, bucket)
}

func (u *Uploader) UploadBatch(ctx context.Context, ownerID string, sourceRefs []string, opts ...Option) (*BatchResult, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}
	o := u.cfg.resolve(ownerID, opts)
	if u.queue == nil {
		o.OfflineQueue = false
	}

	if len(sourceRefs) > o.Max {
		u.logger.Debug(ctx, "truncating batch", "owner", ownerID, "requested", len(sourceRefs), "max", o.Max)
		sourceRefs = sourceRefs[:o.Max]
	}
	batch := models.NewBatch(ownerID, sourceRefs)
	result := &BatchResult{Batch: batch, URLs: []string{}}
	if len(batch.Jobs) == 0 {
		return result, nil
	}

	pf := Preflight(ctx, u.store, o.Bucket)
	switch pf.Status {
	case PreflightFatal:
		return nil, &Error{Kind: KindBucketNotFound, Bucket: o.Bucket, Err: pf.Err}
	case PreflightWarn:
		u.logger.Warn(ctx, "bucket preflight failed, uploading anyway", "bucket", o.Bucket, "kind", pf.Kind.String(), "error", pf.Err)
	}

	p := &pool{u: u, opts: o, jobs: batch.Jobs}
	queued, poolErr := p.run(ctx)

	result.URLs = batch.URLs()
	if len(result.URLs) > 0 {
		result.PrimaryURL = result.URLs[0]
	}

	if len(queued) > 0 {
		refs := make([]string, 0, len(queued))
		for _, i := range queued {
			refs = append(refs, batch.Jobs[i].SourceRef)
		}
		entry, err := u.queue.Enqueue(ctx, ownerID, refs)
		if err != nil {
			u.logger.Error(ctx, "could not queue refs", "owner", ownerID, "refs", len(refs), "error", err)
			return result, &Error{Kind: KindUploadFailed, Detail: fmt.Sprintf("could not queue %d refs", len(refs)), Err: err}
		}
		result.Queued = refs
		result.EntryID = entry.ID
		u.logger.Info(ctx, "network unavailable, refs queued", "owner", ownerID, "entry", entry.ID, "refs", len(result.Queued))
	}

	if poolErr != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, poolErr
	}

	u.logger.Info(ctx, "batch uploaded", "owner", ownerID, "requested", len(batch.Jobs), "uploaded", len(result.URLs))
	return result, nil
}

// UploadSingle uploads one asset with max and concurrency forced to 1.
func (u *Uploader) UploadSingle(ctx context.Context, ownerID, sourceRef string, opts ...Option) (string, error) {
	opts = append(opts[:len(opts):len(opts)], WithMax(1), WithConcurrency(1))
	res, err := u.UploadBatch(ctx, ownerID, []string{sourceRef}, opts...)
	if err != nil {
		return "", err
	}
	if res.PrimaryURL != "" {
		return res.PrimaryURL, nil
	}
	if len(res.Queued) > 0 {
		return "", &Error{Kind: KindNetworkUnavailable, Detail: "queued as " + res.EntryID}
	}
	job := res.Batch.Jobs[0]
	if job.Err != nil {
		return "", job.Err
	}
	return "", &Error{Kind: KindUploadFailed, Detail: sourceRef}
}

func (u *Uploader) EnqueuePendingUpload(ctx context.Context, ownerID string, sourceRefs []string) (models.PendingQueueEntry, error) {
	if ownerID == "" {
		return models.PendingQueueEntry{}, ErrEmptyOwner
	}
	if u.queue == nil {
		return models.PendingQueueEntry{}, fmt.Errorf("offline queue is not configured")
	}
	return u.queue.Enqueue(ctx, ownerID, sourceRefs)
}

func (u *Uploader) PendingUploads(ctx context.Context, ownerID string) ([]models.PendingQueueEntry, error) {
	if u.queue == nil {
		return nil, nil
	}
	return u.queue.Entries(ctx, ownerID)
}

// ProcessPendingUploads re-uploads the owner's queued entries with offline
// queueing turned off. Entries larger than one batch are uploaded in
// batch-sized chunks. It returns the number of refs in removed entries.
func (u *Uploader) ProcessPendingUploads(ctx context.Context, ownerID string, opts ...Option) (int, error) {
	if ownerID == "" {
		return 0, ErrEmptyOwner
	}
	if u.queue == nil {
		return 0, nil
	}

	opts = append(opts[:len(opts):len(opts)], WithOfflineQueue(false))
	chunk := u.cfg.resolve(ownerID, opts).Max

	return u.queue.Drain(ctx, ownerID, func(ctx context.Context, refs []string) error {
		for start := 0; start < len(refs); start += chunk {
			part := refs[start:min(start+chunk, len(refs))]

			res, err := u.UploadBatch(ctx, ownerID, part, opts...)
			if err != nil {
				return err
			}
			if len(res.URLs) != len(part) {
				return &Error{Kind: KindUploadFailed, Detail: fmt.Sprintf("%d of %d refs uploaded", len(res.URLs), len(part))}
			}
		}
		return nil
	})
}

var _ Service = (*Uploader)(nil)

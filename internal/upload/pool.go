package upload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/photoupload/internal/models"
	"github.com/dmitrijs2005/photoupload/internal/retry"
	"github.com/dmitrijs2005/photoupload/internal/storage"
	"github.com/dmitrijs2005/photoupload/internal/transform"
)

// pool runs the jobs of one batch on at most Concurrency workers that claim
// jobs from a shared cursor.
type pool struct {
	u    *Uploader
	opts Options
	jobs []*models.UploadJob

	next atomic.Int64
	// stopped ends claiming; jobs already in flight finish.
	stopped atomic.Bool
	// offline marks that unclaimed jobs go to the offline queue.
	offline atomic.Bool

	mu     sync.Mutex
	queued []int

	// cbMu serializes user callbacks and guards done.
	cbMu sync.Mutex
	done int
}

// run returns the indices of jobs that should go to the offline queue, in
// submission order. A non-nil error aborted the pool: no further jobs were
// claimed, but jobs already in flight ran to completion.
func (p *pool) run(ctx context.Context) ([]int, error) {
	workers := min(p.opts.Concurrency, len(p.jobs))

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return p.work(ctx)
		})
	}
	err := g.Wait()

	if p.offline.Load() {
		for i := int(p.next.Load()); i < len(p.jobs); i++ {
			p.queued = append(p.queued, i)
		}
	}
	sort.Ints(p.queued)
	return p.queued, err
}

func (p *pool) work(ctx context.Context) error {
	for {
		if p.stopped.Load() || ctx.Err() != nil {
			return nil
		}
		i := int(p.next.Add(1)) - 1
		if i >= len(p.jobs) {
			return nil
		}
		job := p.jobs[i]

		err := p.runJob(ctx, job)
		if err == nil {
			p.progress(job)
			continue
		}

		kind, _ := KindOf(err)
		switch {
		case kind == KindNetworkUnavailable && p.opts.OfflineQueue:
			p.offline.Store(true)
			p.stopped.Store(true)
			job.State = models.JobFailedRetryable
			p.mu.Lock()
			p.queued = append(p.queued, job.Index)
			p.mu.Unlock()
			return nil
		case kind == KindTransformReadFailed:
			p.u.logger.Warn(ctx, "asset unreadable, skipping", "source", job.SourceRef, "error", err)
			p.progress(job)
		default:
			p.stopped.Store(true)
			p.u.logger.Warn(ctx, "upload failed", "source", job.SourceRef, "attempts", job.Attempt+1, "error", err)
			p.progress(job)
			return err
		}
	}
}

func (p *pool) runJob(ctx context.Context, job *models.UploadJob) error {
	job.State = models.JobInFlight

	res, err := p.u.transformer.Transform(ctx, job.SourceRef, p.opts.Resize)
	if err != nil {
		return p.fail(job, &Error{Kind: KindTransformReadFailed, Detail: job.SourceRef, Err: err})
	}

	if job.TargetPath == "" {
		job.TargetPath = targetPath(p.opts.PathPrefix, job.Index, res.Ext())
	}

	policy := retry.Policy{
		Retries: p.opts.Retries,
		Backoff: p.opts.Backoff,
		OnRetry: func(attempt int, err error) {
			job.Attempt = attempt
			job.State = models.JobFailedRetryable
			p.u.logger.Warn(ctx, "retrying upload", "source", job.SourceRef, "path", job.TargetPath, "attempt", attempt, "error", err)
			if p.opts.OnRetry != nil {
				p.cbMu.Lock()
				p.opts.OnRetry(attempt, err)
				p.cbMu.Unlock()
			}
		},
	}

	err = retry.Run(ctx, policy, func(ctx context.Context) error {
		job.State = models.JobInFlight
		return p.write(ctx, job.TargetPath, res)
	})
	if err != nil {
		return p.fail(job, p.classify(err))
	}

	job.ResultURL = p.u.store.PublicURL(p.opts.Bucket, job.TargetPath)
	job.State = models.JobSucceeded
	return nil
}

func (p *pool) write(ctx context.Context, path string, res transform.Result) error {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	err := p.u.store.Upload(ctx, p.opts.Bucket, path, res.Data, storage.UploadOptions{
		Upsert:      true,
		ContentType: res.MIMEType,
	})
	if err != nil && storage.KindOf(err) == storage.KindBucketNotFound {
		return retry.Permanent(err)
	}
	return err
}

func (p *pool) classify(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUploadFailed, Err: err}
	}
	switch storage.KindOf(err) {
	case storage.KindBucketNotFound:
		return &Error{Kind: KindBucketNotFound, Bucket: p.opts.Bucket, Err: err}
	case storage.KindNetwork:
		if p.opts.OfflineQueue {
			return &Error{Kind: KindNetworkUnavailable, Err: err}
		}
		return &Error{Kind: KindUploadFailed, Err: err}
	default:
		return &Error{Kind: KindUploadFailed, Err: err}
	}
}

func (p *pool) fail(job *models.UploadJob, err *Error) error {
	job.State = models.JobFailedTerminal
	job.Err = err
	return err
}

func (p *pool) progress(job *models.UploadJob) {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()

	p.done++
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(models.Progress{Current: p.done, Total: len(p.jobs), SourceRef: job.SourceRef})
	}
}

// targetPath is unique per job: prefix/<random>-<index>.<ext>.
func targetPath(prefix string, index int, ext string) string {
	return fmt.Sprintf("%s/%s-%d.%s", prefix, uuid.NewString(), index, ext)
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoupload/internal/models"
	"github.com/dmitrijs2005/photoupload/internal/upload"
)

var errUsage = errors.New("usage")

type usageError string

func (u usageError) Error() string { return "Usage: " + string(u) }

func (u usageError) Unwrap() error { return errUsage }

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("upload <owner> <file...>")
	}
	owner, files := args[0], args[1:]

	if n, err := a.service.ProcessPendingUploads(ctx, owner); err != nil {
		a.logger.Warn(ctx, "draining pending uploads failed", "owner", owner, "error", err)
	} else if n > 0 {
		printlnFn(fmt.Sprintf("Uploaded %d previously queued photo(s)", n))
	}

	res, err := a.service.UploadBatch(ctx, owner, files,
		upload.WithOnProgress(printProgress),
		upload.WithOnRetry(printRetry))
	if res != nil {
		printResult(res, len(files))
	}
	return err
}

func (a *App) Single(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("single <owner> <file>")
	}

	url, err := a.service.UploadSingle(ctx, args[0], args[1], upload.WithOnRetry(printRetry))
	if err != nil {
		return err
	}
	printlnFn(url)
	return nil
}

func (a *App) Enqueue(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("enqueue <owner> <file...>")
	}

	entry, err := a.service.EnqueuePendingUpload(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Queued %d photo(s) as %s", len(entry.SourceRefs), entry.ID))
	return nil
}

func (a *App) Drain(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("drain <owner>")
	}

	n, err := a.service.ProcessPendingUploads(ctx, args[0], upload.WithOnRetry(printRetry))
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Processed %d photo(s)", n))
	return nil
}

func (a *App) Pending(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("pending <owner>")
	}

	entries, err := a.service.PendingUploads(ctx, args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printlnFn("Nothing queued")
		return nil
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("%s  %s  %d photo(s)", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), len(e.SourceRefs)))
	}
	return nil
}

func printProgress(p models.Progress) {
	printlnFn(fmt.Sprintf("[%d/%d] %s", p.Current, p.Total, p.SourceRef))
}

func printRetry(attempt int, err error) {
	printlnFn(fmt.Sprintf("retry #%d: %v", attempt, err))
}

func printResult(res *upload.BatchResult, requested int) {
	for _, url := range res.URLs {
		printlnFn(url)
	}
	if len(res.Queued) > 0 {
		printlnFn(fmt.Sprintf("Network unavailable: %d photo(s) queued, run 'drain' when back online", len(res.Queued)))
	}
	if n := len(res.Batch.Jobs); n < requested {
		printlnFn(fmt.Sprintf("Only the first %d photo(s) were processed", n))
	}
}

// describe turns pipeline errors into actionable messages.
func describe(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, upload.ErrBucketNotFound):
		return "Storage bucket is missing. Create it or fix the bucket setting (-b).\n" + err.Error()
	case errors.Is(err, upload.ErrNetworkQueued):
		return "Network unavailable, the photo was queued.\n" + err.Error()
	case errors.Is(err, upload.ErrTransformReadFailed):
		return "Could not read the photo file.\n" + err.Error()
	case errors.Is(err, upload.ErrUploadFailed):
		return "Upload failed, please try again.\n" + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

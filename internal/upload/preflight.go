package upload

import (
	"context"

	"github.com/dmitrijs2005/photoupload/internal/storage"
)

type PreflightStatus int

const (
	PreflightOK PreflightStatus = iota
	// PreflightWarn means the probe failed for a reason other than a missing
	// bucket. Uploads are still attempted.
	PreflightWarn
	PreflightFatal
)

func (s PreflightStatus) String() string {
	switch s {
	case PreflightOK:
		return "ok"
	case PreflightWarn:
		return "warn"
	default:
		return "fatal"
	}
}

type PreflightResult struct {
	Status PreflightStatus
	// Kind classifies Err; it is KindOther when Err is nil.
	Kind storage.Kind
	Err  error
}

// Preflight probes bucket with a one-object listing.
func Preflight(ctx context.Context, store storage.ObjectStore, bucket string) PreflightResult {
	_, err := store.List(ctx, bucket, "", 1)
	if err == nil {
		return PreflightResult{Status: PreflightOK}
	}

	kind := storage.KindOf(err)
	if kind == storage.KindBucketNotFound {
		return PreflightResult{Status: PreflightFatal, Kind: kind, Err: err}
	}
	return PreflightResult{Status: PreflightWarn, Kind: kind, Err: err}
}

package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/photoupload/internal/kv"
	"github.com/dmitrijs2005/photoupload/internal/pending"
	"github.com/dmitrijs2005/photoupload/internal/storage"
	"github.com/dmitrijs2005/photoupload/internal/transform"
)

const (
	testBucket  = "profile-photos"
	testBaseURL = "https://cdn.test"
)

// fakeStore wraps the in-memory store with a write-attempt counter and
// scripted failures.
type fakeStore struct {
	*storage.MemoryStore

	listErr error
	// uploadErr, when set, is consulted before every write. Returning nil
	// lets the write through.
	uploadErr func(path string, data []byte, attempt int) error
	// delay holds each write, keyed by a substring of the target path.
	delay func(path string) time.Duration
	// landThenFail stores the object and still returns the scripted error.
	landThenFail bool

	writes      atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64

	mu       sync.Mutex
	attempts map[string]int
	paths    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		MemoryStore: storage.NewMemoryStore(testBaseURL, testBucket),
		attempts:    make(map[string]int),
	}
}

func (f *fakeStore) List(ctx context.Context, bucket, prefix string, limit int) ([]storage.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryStore.List(ctx, bucket, prefix, limit)
}

func (f *fakeStore) Upload(ctx context.Context, bucket, path string, data []byte, opts storage.UploadOptions) error {
	f.writes.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		cur := f.maxInflight.Load()
		if n <= cur || f.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.attempts[path]++
	attempt := f.attempts[path]
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if f.delay != nil {
		if d := f.delay(path); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if f.uploadErr != nil {
		if err := f.uploadErr(path, data, attempt); err != nil {
			if f.landThenFail {
				_ = f.MemoryStore.Upload(ctx, bucket, path, data, opts)
			}
			return err
		}
	}
	return f.MemoryStore.Upload(ctx, bucket, path, data, opts)
}

func (f *fakeStore) writtenPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// writeAssets creates files named after names in a temp dir; each file's
// content is its own name.
func writeAssets(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	refs := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o600))
		refs[i] = p
	}
	return refs
}

func dataIs(data []byte, name string) bool {
	return bytes.Equal(data, []byte(name))
}

func pathHasIndex(path string, index string) bool {
	return strings.Contains(path, "-"+index+".")
}

func newTestUploader(t *testing.T, store storage.ObjectStore) (*Uploader, *pending.Queue) {
	t.Helper()
	q := pending.NewQueue(kv.NewMemoryStore(), nil)
	cfg := DefaultConfig()
	cfg.Backoff = time.Millisecond
	return NewUploader(store, transform.New(nil, nil), q, cfg, nil), q
}

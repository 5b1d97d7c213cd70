package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrObjectExists = errors.New("object already exists")

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps buckets in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]memObject
	baseURL string
}

// NewMemoryStore creates a store serving public URLs under baseURL with the
// given buckets already present.
func NewMemoryStore(baseURL string, buckets ...string) *MemoryStore {
	m := &MemoryStore{
		buckets: make(map[string]map[string]memObject),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, b := range buckets {
		m.buckets[b] = make(map[string]memObject)
	}
	return m
}

// CreateBucket adds an empty bucket if it does not exist yet.
func (m *MemoryStore) CreateBucket(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[name]; !ok {
		m.buckets[name] = make(map[string]memObject)
	}
}

func (m *MemoryStore) List(ctx context.Context, bucket, prefix string, limit int) ([]Object, error) {
	objs, err := m.listPrefix(ctx, "list", bucket, prefix)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(objs) > limit {
		objs = objs[:limit]
	}
	return objs, nil
}

func (m *MemoryStore) ListFolder(ctx context.Context, bucket, folder string) ([]Object, error) {
	prefix := strings.TrimSuffix(folder, "/")
	if prefix != "" {
		prefix += "/"
	}
	return m.listPrefix(ctx, "list_folder", bucket, prefix)
}

func (m *MemoryStore) listPrefix(ctx context.Context, op, bucket, prefix string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap(op, bucket, Classify(err), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return nil, wrap(op, bucket, KindBucketNotFound, fmt.Errorf("bucket not found"))
	}

	result := make([]Object, 0)
	for key, o := range objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, Object{Key: key, Size: int64(len(o.data)), LastModified: o.modified})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return wrap("upload", bucket, Classify(err), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return wrap("upload", bucket, KindBucketNotFound, fmt.Errorf("bucket not found"))
	}
	if _, exists := objects[path]; exists && !opts.Upsert {
		return wrap("upload", bucket, KindOther, fmt.Errorf("%s: %w", path, ErrObjectExists))
	}

	objects[path] = memObject{
		data:        append([]byte(nil), data...),
		contentType: opts.ContentType,
		modified:    time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) PublicURL(bucket, path string) string {
	return publicURL(m.baseURL, bucket, path)
}

// Get returns a copy of a stored object and its content type.
func (m *MemoryStore) Get(bucket, path string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.buckets[bucket][path]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), o.data...), o.contentType, true
}

// Len reports the number of objects in bucket.
func (m *MemoryStore) Len(bucket string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets[bucket])
}

func publicURL(base, bucket, path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(bucket), strings.Join(segments, "/"))
}

var _ ObjectStore = (*MemoryStore)(nil)

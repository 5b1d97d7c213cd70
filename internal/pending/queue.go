// Package pending implements the offline durable queue: asset references
// that could not be uploaded because the network was unavailable, persisted
// per owner until a later drain re-uploads them.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/photoupload/internal/kv"
	"github.com/dmitrijs2005/photoupload/internal/logging"
	"github.com/dmitrijs2005/photoupload/internal/models"
)

// StorageKey is the well-known key the whole queue document lives under.
const StorageKey = "pending_uploads"

var ErrEmptyEntry = errors.New("pending entry has no source refs")

// UploadFunc re-uploads the refs of one entry. A nil error means every ref
// was confirmed uploaded.
type UploadFunc func(ctx context.Context, sourceRefs []string) error

// document is the persisted form: owner -> entries in enqueue order.
type document map[string][]models.PendingQueueEntry

type Queue struct {
	mu     sync.Mutex
	store  kv.Store
	key    string
	logger logging.Logger
	now    func() time.Time
}

func NewQueue(store kv.Store, logger logging.Logger) *Queue {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Queue{
		store:  store,
		key:    StorageKey,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue appends a new entry for owner and returns it.
func (q *Queue) Enqueue(ctx context.Context, ownerID string, sourceRefs []string) (models.PendingQueueEntry, error) {
	if len(sourceRefs) == 0 {
		return models.PendingQueueEntry{}, ErrEmptyEntry
	}

	entry := models.PendingQueueEntry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		SourceRefs: append([]string(nil), sourceRefs...),
		CreatedAt:  q.now(),
	}

	err := q.mutate(ctx, func(doc document) {
		doc[ownerID] = append(doc[ownerID], entry)
	})
	if err != nil {
		return models.PendingQueueEntry{}, fmt.Errorf("enqueue pending upload: %w", err)
	}

	q.logger.Info(ctx, "queued pending upload", "owner", ownerID, "entry", entry.ID, "refs", len(sourceRefs))
	return entry, nil
}

// Entries returns a snapshot of owner's entries in enqueue order.
func (q *Queue) Entries(ctx context.Context, ownerID string) ([]models.PendingQueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	doc, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	return cloneEntries(doc[ownerID]), nil
}

// Remove deletes the entry with the given id. Removing an unknown id is not
// an error.
func (q *Queue) Remove(ctx context.Context, ownerID, id string) error {
	err := q.mutate(ctx, func(doc document) {
		entries := doc[ownerID]
		for i, e := range entries {
			if e.ID == id {
				entries = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(entries) == 0 {
			delete(doc, ownerID)
			return
		}
		doc[ownerID] = entries
	})
	if err != nil {
		return fmt.Errorf("remove pending upload %s: %w", id, err)
	}
	return nil
}

// Drain re-uploads every entry queued for owner, oldest first. An entry is
// removed only when upload succeeds for all of its refs; a failed entry is
// left in place and draining continues with the next one. processed counts
// the refs of removed entries.
//
// The lock is not held while upload runs, so entries enqueued during a drain
// are kept and picked up by the next one.
func (q *Queue) Drain(ctx context.Context, ownerID string, upload UploadFunc) (int, error) {
	entries, err := q.Entries(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		if err := upload(ctx, entry.SourceRefs); err != nil {
			q.logger.Warn(ctx, "pending upload failed, keeping entry",
				"owner", ownerID, "entry", entry.ID, "error", err)
			continue
		}

		if err := q.Remove(ctx, ownerID, entry.ID); err != nil {
			return processed, err
		}
		processed += len(entry.SourceRefs)
		q.logger.Info(ctx, "pending upload drained", "owner", ownerID, "entry", entry.ID, "refs", len(entry.SourceRefs))
	}
	return processed, nil
}

func (q *Queue) mutate(ctx context.Context, fn func(doc document)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.store.Update(ctx, q.key, func(current []byte) ([]byte, error) {
		doc, err := decode(current)
		if err != nil {
			return nil, err
		}
		fn(doc)
		return json.Marshal(doc)
	})
}

func (q *Queue) load(ctx context.Context) (document, error) {
	raw, err := q.store.Get(ctx, q.key)
	if err != nil {
		return nil, fmt.Errorf("load pending uploads: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (document, error) {
	doc := document{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode pending uploads: %w", err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func cloneEntries(in []models.PendingQueueEntry) []models.PendingQueueEntry {
	out := make([]models.PendingQueueEntry, len(in))
	for i, e := range in {
		e.SourceRefs = append([]string(nil), e.SourceRefs...)
		out[i] = e
	}
	return out
}

package models

import "time"

// PendingQueueEntry is a durable record of asset handles that are not yet
// confirmed uploaded.
type PendingQueueEntry struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	SourceRefs []string  `json:"source_refs"`
	CreatedAt  time.Time `json:"created_at"`
}

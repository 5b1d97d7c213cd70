package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatch_TagsIndexes(t *testing.T) {
	b := NewBatch("user-1", []string{"a.jpg", "b.jpg", "c.jpg"})

	require.Len(t, b.Jobs, 3)
	for i, j := range b.Jobs {
		assert.Equal(t, i, j.Index)
		assert.Equal(t, "user-1", j.OwnerID)
		assert.Equal(t, JobPending, j.State)
		assert.Zero(t, j.Attempt)
	}
	assert.False(t, b.CreatedAt.IsZero())
}

func TestUploadBatch_URLs_SkipsFailedAndKeepsOrder(t *testing.T) {
	b := NewBatch("u", []string{"a", "b", "c"})
	b.Jobs[0].State, b.Jobs[0].ResultURL = JobSucceeded, "url-a"
	b.Jobs[1].State = JobFailedTerminal
	b.Jobs[2].State, b.Jobs[2].ResultURL = JobSucceeded, "url-c"

	assert.Equal(t, []string{"url-a", "url-c"}, b.URLs())
}

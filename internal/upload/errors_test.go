package upload

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessagePrefixes(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		err    *Error
		prefix string
		target error
	}{
		{&Error{Kind: KindBucketNotFound, Bucket: "photos", Err: cause}, "BUCKET_NOT_FOUND:", ErrBucketNotFound},
		{&Error{Kind: KindUploadFailed, Err: cause}, "UPLOAD_FAILED:", ErrUploadFailed},
		{&Error{Kind: KindTransformReadFailed, Detail: "a.jpg", Err: cause}, "TRANSFORM_READ_FAILED:", ErrTransformReadFailed},
		{&Error{Kind: KindNetworkUnavailable, Detail: "queued"}, "NETWORK_UNAVAILABLE:", ErrNetworkQueued},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.err.Error(), tt.prefix), tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.target)

			wrapped := fmt.Errorf("outer: %w", tt.err)
			kind, ok := KindOf(wrapped)
			assert.True(t, ok)
			assert.Equal(t, tt.err.Kind, kind)
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{Kind: KindBucketNotFound, Bucket: "photos", Err: errors.New("no such bucket")}
	assert.Equal(t, `BUCKET_NOT_FOUND: bucket "photos": no such bucket`, err.Error())

	err = &Error{Kind: KindUploadFailed, Detail: "1 of 2 refs uploaded"}
	assert.Equal(t, "UPLOAD_FAILED: 1 of 2 refs uploaded", err.Error())
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := &Error{Kind: KindUploadFailed, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrBucketNotFound)
}

func TestKindOf_ForeignError(t *testing.T) {
	_, ok := KindOf(errors.New("x"))
	assert.False(t, ok)
}

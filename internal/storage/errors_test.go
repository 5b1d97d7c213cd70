package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindOther},
		{name: "bucket not found", err: errors.New("Bucket not found"), want: KindBucketNotFound},
		{name: "bucket does not exist", err: errors.New(`The bucket "photos" does not exist`), want: KindBucketNotFound},
		{name: "s3 code", err: errors.New("api error NoSuchBucket: gone"), want: KindBucketNotFound},
		{name: "network word", err: errors.New("Network request failed"), want: KindNetwork},
		{name: "fetch", err: errors.New("TypeError: Failed to fetch"), want: KindNetwork},
		{name: "request failed", err: errors.New("REQUEST FAILED with 502"), want: KindNetwork},
		{name: "deadline", err: fmt.Errorf("put: %w", context.DeadlineExceeded), want: KindNetwork},
		{name: "net.Error", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: KindNetwork},
		{name: "permission", err: errors.New("new row violates row-level security policy"), want: KindOther},
		{name: "cancelled", err: context.Canceled, want: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindOf_PrefersAdapterKind(t *testing.T) {
	// The message would classify as network, the adapter said otherwise.
	err := fmt.Errorf("outer: %w", &Error{Kind: KindOther, Op: "upload", Bucket: "b", Err: errors.New("network policy denied")})
	assert.Equal(t, KindOther, KindOf(err))

	assert.Equal(t, KindNetwork, KindOf(errors.New("network down")))
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("boom")
	err := wrap("list", "photos", KindOther, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage list photos: boom", err.Error())
	assert.Nil(t, wrap("list", "photos", KindOther, nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "bucket_not_found", KindBucketNotFound.String())
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "other", KindOther.String())
}

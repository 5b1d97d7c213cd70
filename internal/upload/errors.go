package upload

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed set of failures the pipeline reports to callers.
type ErrorKind int

const (
	KindUploadFailed ErrorKind = iota
	KindBucketNotFound
	KindTransformReadFailed
	KindNetworkUnavailable
)

// Prefix is the stable message prefix callers match on.
func (k ErrorKind) Prefix() string {
	switch k {
	case KindBucketNotFound:
		return "BUCKET_NOT_FOUND"
	case KindTransformReadFailed:
		return "TRANSFORM_READ_FAILED"
	case KindNetworkUnavailable:
		return "NETWORK_UNAVAILABLE"
	default:
		return "UPLOAD_FAILED"
	}
}

func (k ErrorKind) String() string {
	return strings.ToLower(k.Prefix())
}

var (
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrUploadFailed        = errors.New("upload failed")
	ErrTransformReadFailed = errors.New("transform read failed")
	ErrNetworkQueued       = errors.New("network unavailable, queued for retry")

	ErrEmptyOwner = errors.New("owner id is empty")
)

// Error is returned by the public upload operations. Its message always
// starts with Kind.Prefix() followed by a colon.
type Error struct {
	Kind   ErrorKind
	Bucket string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Prefix())
	b.WriteString(":")
	if e.Bucket != "" {
		fmt.Fprintf(&b, " bucket %q", e.Bucket)
	}
	if e.Detail != "" {
		b.WriteString(" ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		if e.Bucket != "" || e.Detail != "" {
			b.WriteString(":")
		}
		b.WriteString(" ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k ErrorKind) error {
	switch k {
	case KindBucketNotFound:
		return ErrBucketNotFound
	case KindTransformReadFailed:
		return ErrTransformReadFailed
	case KindNetworkUnavailable:
		return ErrNetworkQueued
	default:
		return ErrUploadFailed
	}
}

// KindOf reports the kind of a pipeline error; ok is false for errors that
// did not come from this package.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

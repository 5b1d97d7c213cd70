package storage

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/photoupload/internal/netx"
)

// Kind is the closed classification of store failures.
type Kind int

const (
	KindOther Kind = iota
	KindBucketNotFound
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindBucketNotFound:
		return "bucket_not_found"
	case KindNetwork:
		return "network"
	default:
		return "other"
	}
}

// Error is returned by the adapters in this package.
type Error struct {
	Kind   Kind
	Op     string
	Bucket string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	bucketMissingPattern = regexp.MustCompile(`(?i)bucket not found|bucket\b.*\bdoes not exist|nosuchbucket`)
	networkPattern       = regexp.MustCompile(`(?i)network|fetch|request failed`)
)

// KindOf returns the kind recorded by an adapter, or classifies err by its
// shape and message when it did not come from one.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Classify(err)
}

// Classify derives a Kind from err alone.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	msg := err.Error()
	if bucketMissingPattern.MatchString(msg) {
		return KindBucketNotFound
	}

	if netx.IsTransient(err) {
		return KindNetwork
	}
	if networkPattern.MatchString(msg) {
		return KindNetwork
	}

	return KindOther
}

func wrap(op, bucket string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Bucket: bucket, Err: err}
}

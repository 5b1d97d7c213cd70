// Package transform turns a local asset reference into upload-ready bytes.
//
// When a resize is requested and a backend is available the asset is
// downsized and recompressed to JPEG. Any backend failure falls back to the
// raw bytes with a MIME type inferred from the file extension. Only a failed
// raw read is an error.
package transform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/photoupload/internal/logging"
	"github.com/dmitrijs2005/photoupload/internal/models"
)

// ErrReadFailed means the local asset could not be read. Retrying will not help.
var ErrReadFailed = errors.New("asset read failed")

const defaultMIME = "image/jpeg"

// Backend resizes the image at path and returns JPEG bytes.
type Backend interface {
	Resize(ctx context.Context, path string, spec models.ResizeSpec) ([]byte, error)
}

// Result is the transformed payload.
type Result struct {
	Data     []byte
	MIMEType string
	// Resized reports whether the backend produced Data.
	Resized bool
}

// Ext is the file extension, without the dot, matching MIMEType.
func (r Result) Ext() string {
	return ExtensionFor(r.MIMEType)
}

type Transformer struct {
	backend Backend
	logger  logging.Logger
}

// New returns a Transformer. A nil backend disables resizing.
func New(backend Backend, logger logging.Logger) *Transformer {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Transformer{backend: backend, logger: logger}
}

func (t *Transformer) Transform(ctx context.Context, sourceRef string, spec *models.ResizeSpec) (Result, error) {
	path := LocalPath(sourceRef)

	if spec != nil && t.backend != nil {
		data, err := t.backend.Resize(ctx, path, *spec)
		if err == nil {
			return Result{Data: data, MIMEType: "image/jpeg", Resized: true}, nil
		}
		t.logger.Debug(ctx, "resize failed, uploading original", "source", sourceRef, "error", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	mime, ok := MIMEFromExt(path)
	if !ok {
		mime = sniff(raw)
	}

	return Result{Data: raw, MIMEType: mime}, nil
}

// LocalPath strips a file:// scheme from sourceRef.
func LocalPath(sourceRef string) string {
	if !strings.HasPrefix(sourceRef, "file://") {
		return sourceRef
	}
	u, err := url.Parse(sourceRef)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(sourceRef, "file://")
	}
	return u.Path
}

// MIMEFromExt maps the image extensions the pipeline knows about.
func MIMEFromExt(path string) (string, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "webp":
		return "image/webp", true
	case "heic", "heif":
		return "image/heic", true
	default:
		return defaultMIME, false
	}
}

// ExtensionFor returns the storage file extension for a MIME type.
func ExtensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic", "image/heif":
		return "heic"
	}
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	return "jpg"
}

func sniff(data []byte) string {
	m := mimetype.Detect(data)
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return defaultMIME
}

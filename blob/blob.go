// Package blob stores chart screenshots and backup files. Local keeps them
// on disk; the s3 subpackage targets any S3-compatible object store.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("blob: not found")
	ErrInvalidName = errors.New("blob: invalid name")
)

// Info describes a stored object.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Store is the object storage the journal writes to. Put returns the
// public URL recorded on the trade.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, name string) error
}

// ScreenshotName builds the object name for an uploaded chart:
// <unix-ms>-<0..999><ext>, keeping the lower-cased extension of the
// original file name.
func ScreenshotName(now time.Time, original string) string {
	return screenshotName(now, rand.Intn(1000), original)
}

func screenshotName(now time.Time, n int, original string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(original, "\\", "/"))))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), n, ext)
}

// CleanName rejects names that would escape the store root.
func CleanName(name string) (string, error) {
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	if name == "" {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// ContentType guesses a MIME type for common screenshot extensions.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}

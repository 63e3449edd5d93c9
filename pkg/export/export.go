package export

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	verrors "github.com/vango-dev/suspense/internal/errors"
)

// ContentType is the media type of exported markup.
const ContentType = "text/html; charset=utf-8"

// Exporter publishes rendered markup under a name.
type Exporter interface {
	Export(ctx context.Context, name string, html []byte) error
}

// DiskExporter writes markup below a directory.
type DiskExporter struct {
	dir string
}

// NewDiskExporter creates a DiskExporter rooted at dir.
func NewDiskExporter(dir string) *DiskExporter {
	return &DiskExporter{dir: dir}
}

// Export writes html to dir/name, creating parent directories. Names that
// escape the directory are rejected.
func (e *DiskExporter) Export(ctx context.Context, name string, html []byte) error {
	if err := ctx.Err(); err != nil {
		return exportError(err)
	}
	path, err := e.path(name)
	if err != nil {
		return exportError(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return exportError(err)
	}

	// Write to a temp file first so readers never see partial markup
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, html, 0644); err != nil {
		return exportError(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return exportError(err)
	}
	return nil
}

func (e *DiskExporter) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("export: invalid name %q", name)
	}
	return filepath.Join(e.dir, clean), nil
}

// Target is a parsed output destination.
type Target struct {
	// Stdout is set for "-".
	Stdout bool

	// Path is set for a local file.
	Path string

	// Bucket and Key are set for an s3://bucket/key URL.
	Bucket string
	Key    string
}

// ParseTarget parses "-", a file path, or an s3://bucket/key URL.
func ParseTarget(s string) (Target, error) {
	switch {
	case s == "":
		return Target{}, verrors.New("E140").WithDetail("The output target is empty.")
	case s == "-":
		return Target{Stdout: true}, nil
	case strings.HasPrefix(s, "s3://"):
		u, err := url.Parse(s)
		if err != nil {
			return Target{}, verrors.New("E140").Wrap(err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
			return Target{}, verrors.New("E140").
				WithDetail(fmt.Sprintf("%q must name both a bucket and an object key.", s))
		}
		return Target{Bucket: u.Host, Key: key}, nil
	case strings.Contains(s, "://"):
		return Target{}, verrors.New("E140").
			WithDetail(fmt.Sprintf("Unsupported scheme in %q.", s))
	default:
		return Target{Path: s}, nil
	}
}

func exportError(err error) error {
	return verrors.FromError(err, "E180")
}

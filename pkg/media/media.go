// Package media resolves image references to local files and encodes them as
// data URLs suitable for embedding in wire messages.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnknownMIME is returned when the MIME type of a file cannot be determined.
var ErrUnknownMIME = errors.New("could not determine MIME type of the file")

// Resolver maps an image reference, such as a content URI, to a readable
// filesystem path. ok is false when the reference cannot be resolved.
type Resolver interface {
	Resolve(ref string) (path string, ok bool)
}

// FileResolver resolves file:// URIs and plain paths. Relative paths are
// joined to Root when it is set.
type FileResolver struct {
	Root string
}

// Resolve implements Resolver.
func (r FileResolver) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || u.Scheme != "file" || u.Path == "" {
			return "", false
		}
		path = u.Path
	}

	if !filepath.IsAbs(path) && r.Root != "" {
		path = filepath.Join(r.Root, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// DetectMIME returns the MIME type of the file at path, sniffing its content
// first and falling back to the file extension.
func DetectMIME(path string) (string, error) {
	if mt, err := mimetype.DetectFile(path); err == nil && mt.String() != "application/octet-stream" && !mt.Is("text/plain") {
		return baseType(mt.String()), nil
	}

	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return baseType(byExt), nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownMIME)
}

// EncodeDataURL reads the file at path and returns it as a base64 data URL
// without line wrapping.
func EncodeDataURL(path string) (string, error) {
	mimeType, err := DetectMIME(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ResolveDataURL resolves ref with r and encodes the file it points at.
func ResolveDataURL(r Resolver, ref string) (string, error) {
	path, ok := r.Resolve(ref)
	if !ok {
		return "", fmt.Errorf("unresolvable image reference %q", ref)
	}
	return EncodeDataURL(path)
}

func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

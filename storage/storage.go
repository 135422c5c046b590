package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned by Open when no object has the given name.
var ErrNotFound = errors.New("object not found")

// UploadsPrefix is the server-relative prefix of locally stored files.
const UploadsPrefix = "/uploads/"

const (
	maxFilenameLength = 150
	// stem used when nothing of the original stem survives sanitizing
	defaultStem = "audio"
)

var (
	whitespace      = regexp.MustCompile(`\s+`)
	nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
	// extensions keep letters and digits only
	nonAlphaNumericExt = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

func init() {
	// Platform mime tables often lack these.
	for ext, typ := range map[string]string{
		".wav":  "audio/wav",
		".webm": "audio/webm",
		".mp3":  "audio/mpeg",
		".ogg":  "audio/ogg",
		".m4a":  "audio/mp4",
		".mp4":  "audio/mp4",
	} {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// Backend stores uploaded audio and hands it back for streaming.
type Backend interface {
	// Store writes r under name and returns the public reference of the
	// stored object: "/uploads/<name>" or an absolute URL.
	Store(ctx context.Context, r io.Reader, name string) (string, error)
	// Open returns the named object or ErrNotFound.
	Open(ctx context.Context, name string) (*Object, error)
	Name() string
}

// Lister is implemented by backends that can enumerate their objects.
type Lister interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Object is an opened stored file.
type Object struct {
	Content io.ReadSeekCloser
	Size    int64
	ModTime time.Time
}

// Close releases the object's content.
func (o *Object) Close() error {
	return o.Content.Close()
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// SanitizeFilename reduces name to a safe base name made of [A-Za-z0-9_.-].
// The result is empty when nothing usable remains.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	name = nonAlphaNumeric.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	return name
}

// StoredFilename prefixes the sanitized original name with the upload time so
// that two uploads of the same file do not collide. Stem and extension are
// sanitized separately; a stem with nothing usable left becomes "audio" so the
// extension survives. It returns "" when neither has anything usable.
func StoredFilename(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := filepath.Ext(base)
	stem := SanitizeFilename(strings.TrimSuffix(base, ext))
	ext = strings.ToLower(nonAlphaNumericExt.ReplaceAllString(strings.TrimPrefix(ext, "."), ""))

	var safe string
	switch {
	case ext == "" && stem == "":
		return ""
	case ext == "":
		safe = stem
	default:
		if stem == "" {
			stem = defaultStem
		}
		if limit := maxFilenameLength - len(ext) - 1; len(stem) > limit {
			stem = stem[:limit]
		}
		safe = stem + "." + ext
	}
	return fmt.Sprintf("%d.%06d_%s", now.Unix(), now.Nanosecond()/int(time.Microsecond), safe)
}

// MaterializeURL turns a server-relative upload reference into an absolute
// URL under base. Absolute URLs and empty references are returned unchanged.
func MaterializeURL(ref, base string) string {
	if !strings.HasPrefix(ref, UploadsPrefix) {
		return ref
	}
	return strings.TrimRight(base, "/") + ref
}

// ContentTypeFor guesses the content type from the file extension.
func ContentTypeFor(name string) string {
	if typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); typ != "" {
		return typ
	}
	return "application/octet-stream"
}

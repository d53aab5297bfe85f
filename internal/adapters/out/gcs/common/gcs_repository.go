// internal/adapters/out/gcs/common/gcs_repository.go
package common

import (
	"fmt"
	"net/url"
	"strings"
)

// GCSPublicURL builds a public GCS URL. Empty bucket falls back to
// defaultBucket; a leading "/" on objectPath is dropped.
func GCSPublicURL(bucket, objectPath, defaultBucket string) string {
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = strings.TrimSpace(defaultBucket)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, escapeObjectPath(ObjectName(objectPath)))
}

// ObjectName turns an image path such as "/mons/Pikachu_nft.png" into the
// object name "mons/Pikachu_nft.png".
func ObjectName(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), "/")
}

// JoinURL appends path to base with exactly one "/" between them.
func JoinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	obj := escapeObjectPath(ObjectName(path))
	if base == "" {
		return "/" + obj
	}
	return base + "/" + obj
}

// escapeObjectPath escapes each segment but keeps the "/" separators.
func escapeObjectPath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

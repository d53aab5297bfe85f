// internal/adapters/out/gcs/artwork_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/storage"

	gcscommon "pokemint/internal/adapters/out/gcs/common"
)

// ArtworkRepositoryGCS resolves card artwork ("/mons/{name}_nft.png") to
// public URLs and checks whether the object exists. It implements
// usecase.ArtworkRepository.
//
// Without a client or bucket the images are assumed to be served from
// BaseURL (or relative to the site) and always exist.
type ArtworkRepositoryGCS struct {
	Client  *storage.Client
	Bucket  string
	BaseURL string
}

func NewArtworkRepositoryGCS(client *storage.Client, bucket, baseURL string) *ArtworkRepositoryGCS {
	return &ArtworkRepositoryGCS{
		Client:  client,
		Bucket:  strings.TrimSpace(bucket),
		BaseURL: strings.TrimSpace(baseURL),
	}
}

func (r *ArtworkRepositoryGCS) usesBucket() bool {
	return r != nil && r.Client != nil && r.Bucket != ""
}

// PublicURL returns the URL a browser loads path from. An explicit BaseURL
// (a CDN in front of the bucket) wins over the storage.googleapis.com URL.
func (r *ArtworkRepositoryGCS) PublicURL(path string) string {
	if r == nil {
		return gcscommon.JoinURL("", path)
	}
	if r.BaseURL != "" {
		return gcscommon.JoinURL(r.BaseURL, path)
	}
	if r.Bucket != "" {
		return gcscommon.GCSPublicURL(r.Bucket, path, "")
	}
	return gcscommon.JoinURL("", path)
}

// Exists reports whether the artwork object is present in the bucket.
func (r *ArtworkRepositoryGCS) Exists(ctx context.Context, path string) (bool, error) {
	if !r.usesBucket() {
		return true, nil
	}
	_, err := r.Client.Bucket(r.Bucket).Object(gcscommon.ObjectName(path)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

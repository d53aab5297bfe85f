// internal/adapters/out/http/metadata_fetcher.go
package httpout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	nftdom "pokemint/internal/domain/nft"
)

// DefaultMaxMetadataBytes caps an off-chain metadata document.
const DefaultMaxMetadataBytes int64 = 1 << 20

var (
	ErrUnsupportedScheme = errors.New("metadata: only http and https uris are fetched")
	ErrMetadataTooLarge  = errors.New("metadata: document too large")
)

// MetadataFetcher loads the off-chain JSON an NFT's URI points to.
// It implements usecase.MetadataFetcher.
//
// URIs come from on-chain accounts anyone can write, so only http(s) is
// followed (redirects included) and bodies are read through a size cap.
type MetadataFetcher struct {
	http     *resty.Client
	maxBytes int64
}

func NewMetadataFetcher(timeout time.Duration) *MetadataFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MetadataFetcher{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetRedirectPolicy(
				resty.FlexibleRedirectPolicy(5),
				resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
					return checkScheme(req.URL)
				}),
			),
		maxBytes: DefaultMaxMetadataBytes,
	}
}

// WithMaxBytes overrides the body size cap.
func (f *MetadataFetcher) WithMaxBytes(n int64) *MetadataFetcher {
	if n > 0 {
		f.maxBytes = n
	}
	return f
}

func checkScheme(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host", ErrUnsupportedScheme)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

// Fetch GETs uri and decodes it. Non-2xx responses, undecodable or
// oversized bodies are errors. A document without an image is not.
func (f *MetadataFetcher) Fetch(ctx context.Context, uri string) (nftdom.OffchainMetadata, error) {
	uri = nftdom.TrimPadding(uri)
	if uri == "" {
		return nftdom.OffchainMetadata{}, nftdom.ErrEmptyURI
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nftdom.OffchainMetadata{}, fmt.Errorf("parse metadata uri: %w", err)
	}
	if err := checkScheme(u); err != nil {
		return nftdom.OffchainMetadata{}, err
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(uri)
	if err != nil {
		return nftdom.OffchainMetadata{}, fmt.Errorf("fetch metadata %s: %w", uri, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nftdom.OffchainMetadata{}, fmt.Errorf("fetch metadata %s: status=%d", uri, resp.StatusCode())
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nftdom.OffchainMetadata{}, fmt.Errorf("read metadata %s: %w", uri, err)
	}
	if int64(len(raw)) > f.maxBytes {
		return nftdom.OffchainMetadata{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrMetadataTooLarge, uri, f.maxBytes)
	}

	var m nftdom.OffchainMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nftdom.OffchainMetadata{}, fmt.Errorf("decode metadata %s: %w", uri, err)
	}
	m.Image = strings.TrimSpace(m.Image)
	return m, nil
}

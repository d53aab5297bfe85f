// internal/infra/arweave/uploader.go
package arweave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("arweave: endpoint not configured")
	ErrEmptyPayload  = errors.New("arweave: metadata json is empty")
)

// HTTPUploader posts metadata JSON to an Irys/Arweave upload service
// (POST {baseURL}/upload/json -> {"uri": "..."}). It implements
// usecase.ArweaveUploader.
type HTTPUploader struct {
	http    *resty.Client
	baseURL string
	log     *zap.Logger
}

func NewHTTPUploader(baseURL, apiKey string, log *zap.Logger) *HTTPUploader {
	if log == nil {
		log = zap.NewNop()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")

	c := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &HTTPUploader{http: c, baseURL: baseURL, log: log.Named("arweave")}
}

// Configured reports whether an upload endpoint is set.
func (u *HTTPUploader) Configured() bool {
	return u != nil && u.baseURL != ""
}

// UploadJSON uploads metadataJSON and returns its gateway URI.
func (u *HTTPUploader) UploadJSON(ctx context.Context, metadataJSON []byte) (string, error) {
	if len(metadataJSON) == 0 {
		return "", ErrEmptyPayload
	}
	if !u.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := u.http.R().
		SetContext(ctx).
		SetBody(metadataJSON).
		Post(u.baseURL + "/upload/json")
	if err != nil {
		return "", fmt.Errorf("arweave: upload metadata: %w", err)
	}
	if resp.IsError() {
		u.log.Warn("upload metadata failed",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return "", fmt.Errorf("arweave: upload metadata failed: status=%d", resp.StatusCode())
	}

	var res struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		return "", fmt.Errorf("arweave: decode upload response: %w", err)
	}
	if strings.TrimSpace(res.URI) == "" {
		return "", errors.New("arweave: upload response has empty uri")
	}

	u.log.Info("metadata uploaded", zap.String("uri", res.URI), zap.Int("bytes", len(metadataJSON)))
	return res.URI, nil
}

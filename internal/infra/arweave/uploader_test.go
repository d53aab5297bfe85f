package arweave

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUploadJSON(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"uri":"https://gateway.irys.xyz/abc"}`)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL+"/", "secret", nil)
	uri, err := u.UploadJSON(context.Background(), []byte(`{"name":"Pikachu Card"}`))
	if err != nil {
		t.Fatalf("UploadJSON: %v", err)
	}
	if uri != "https://gateway.irys.xyz/abc" {
		t.Errorf("uri = %q", uri)
	}
	if gotPath != "/upload/json" || gotAuth != "Bearer secret" || gotBody != `{"name":"Pikachu Card"}` {
		t.Errorf("request path=%q auth=%q body=%q", gotPath, gotAuth, gotBody)
	}
}

func TestUploadJSON_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewHTTPUploader(srv.URL, "", nil).UploadJSON(context.Background(), []byte(`{}`)); err == nil {
		t.Error("expected error on 502")
	}
	if _, err := NewHTTPUploader("", "", nil).UploadJSON(context.Background(), []byte(`{}`)); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewHTTPUploader(srv.URL, "", nil).UploadJSON(context.Background(), nil); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestUploadJSON_EmptyURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"uri":""}`)
	}))
	defer srv.Close()

	if _, err := NewHTTPUploader(srv.URL, "", nil).UploadJSON(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected error for empty uri")
	}
}

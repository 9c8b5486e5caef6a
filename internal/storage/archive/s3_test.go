// internal/storage/archive/s3_test.go
package archive

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Config_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "reports/2025-W11.html", "reports/2025-W11.html"},
		{"journal", "reports/2025-W11.html", "journal/reports/2025-W11.html"},
		{"/journal/", "/reports/2025-W11.html", "journal/reports/2025-W11.html"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.Trim(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestS3Storage_WriteAndExists(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	s, err := NewS3(S3Config{
		Bucket:    "journal",
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "archive",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	ctx := context.Background()

	if err := s.Write(ctx, "reports/2025-W11.html", []byte("report")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	exists, err := s.Exists(ctx, "reports/2025-W12.html")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected false for missing object")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(requests) == 0 || requests[0] != "PUT /journal/archive/reports/2025-W11.html" {
		t.Errorf("unexpected requests: %v", requests)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.html": "text/html; charset=utf-8",
		"a.json": "application/json",
		"a.bin":  "application/octet-stream",
	}
	for path, want := range tests {
		if got := contentType(path); got != want {
			t.Errorf("contentType(%q) = %q, want %q", path, got, want)
		}
	}
}

func newTestS3(t *testing.T, handler http.HandlerFunc) *S3Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewS3(S3Config{Bucket: "journal", Endpoint: srv.URL, AccessKey: "key", SecretKey: "secret", Prefix: "archive"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	return s
}

func TestS3Storage_ReadMissing(t *testing.T) {
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
	})

	_, err := s.Read(context.Background(), "reports/2025-W11.html")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestS3Storage_List(t *testing.T) {
	var query string
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>journal</Name>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>archive/reports/2025-W12.html</Key></Contents>
  <Contents><Key>archive/reports/</Key></Contents>
  <Contents><Key>archive/reports/2025-W11.html</Key></Contents>
</ListBucketResult>`))
	})

	paths, err := s.List(context.Background(), "reports")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if query != "archive/reports" {
		t.Errorf("unexpected prefix %q", query)
	}
	want := []string{"reports/2025-W11.html", "reports/2025-W12.html"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("List = %v, want %v", paths, want)
	}
}

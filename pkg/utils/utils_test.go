package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.csv")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Fetcher{}
	data, err := f.Fetch(context.Background(), path)
	if err != nil || string(data) != "hello" {
		t.Errorf("Fetch(%s) = (%q, %v)", path, data, err)
	}

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing file, got %v", err)
	}
}

func TestFetchRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/europe.json":
			_, _ = fmt.Fprint(w, `{"type":"FeatureCollection","features":[]}`)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path    string
		wantErr error
		ok      bool
	}{
		{"/europe.json", nil, true},
		{"/missing.json", ErrNotFound, false},
		{"/broken", nil, false},
	}
	f := &Fetcher{Client: srv.Client()}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			data, err := f.Fetch(context.Background(), srv.URL+tt.path)
			if tt.ok {
				if err != nil || len(data) == 0 {
					t.Errorf("Fetch = (%q, %v)", data, err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, "id,name\n")
	}))
	defer srv.Close()

	cache, err := OpenMemoryBlobCache()
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			t.Logf("Error closing cache: %v", err)
		}
	}()

	f := &Fetcher{Client: srv.Client(), Cache: cache, TTL: time.Hour}
	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), srv.URL+"/places.csv")
		if err != nil || string(data) != "id,name\n" {
			t.Fatalf("Fetch #%d = (%q, %v)", i, data, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("Expected one download, got %d", got)
	}
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &Fetcher{Client: srv.Client()}
	if _, err := f.Fetch(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/a.json": true,
		"http://example.com/a.csv":   true,
		"data/places.csv":            false,
		"/tmp/europe.json":           false,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v; want %v", src, got, want)
		}
	}
}

// Package utils fetches the map's input files from disk or the network,
// keeping downloads in a local cache between runs.
package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

var ErrNotFound = errors.New("file not found on server")

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 1024*1024 { // Log every MB
		log.Printf("%s: Downloaded %d MB", pw.label, pw.total/1024/1024)
		pw.last = pw.total
	}
	return n, err
}

// IsRemote reports whether src is fetched over HTTP rather than read from disk.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetcher reads sources that are either local paths or http(s) URLs.
type Fetcher struct {
	Client *http.Client
	// Cache keeps remote bodies between runs. Nil disables caching.
	Cache *BlobCache
	// TTL is how long a cached body stays valid. Zero keeps it forever.
	TTL time.Duration
}

// Open returns a reader for src. Missing local files and 404 responses
// are reported as ErrNotFound.
func (f *Fetcher) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !IsRemote(src) {
		file, err := os.Open(src)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return file, err
	}

	if f.Cache != nil {
		data, err := f.Cache.Get(src)
		if err != nil {
			log.Printf("[cache] Error reading %s: %v", src, err)
		} else if data != nil {
			log.Printf("[cache] Using cached copy of %s", src)
			return io.NopCloser(bytes.NewReader(data)), nil
		}

		data, err = f.download(ctx, src)
		if err != nil {
			return nil, err
		}
		if err := f.Cache.Put(src, data, f.TTL); err != nil {
			log.Printf("[cache] Error storing %s: %v", src, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	log.Printf("Streaming from %s", src)
	resp, err := f.get(ctx, src)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Fetch reads src completely.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	rc, err := f.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Printf("Error closing %s: %v", src, err)
		}
	}()
	return io.ReadAll(rc)
}

func (f *Fetcher) download(ctx context.Context, src string) ([]byte, error) {
	log.Printf("Downloading %s", src)
	resp, err := f.get(ctx, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	var buf bytes.Buffer
	pw := &progressWriter{Writer: &buf, label: src}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Fetcher) get(ctx context.Context, src string) (*http.Response, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp, nil
}

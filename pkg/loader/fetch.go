package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher retrieves the raw index resource named by a relative path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileFetcher reads the index from a static-site output directory.
type FileFetcher struct {
	Dir string
}

func (f FileFetcher) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := path
	if !filepath.IsAbs(path) && f.Dir != "" {
		full = filepath.Join(f.Dir, path)
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	return file, nil
}

// HTTPFetcher downloads the index relative to a base URL.
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid index path %q: %w", path, err)
	}
	target := ref
	if f.Base != nil {
		target = f.Base.ResolveReference(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", target, resp.Status)
	}
	return resp.Body, nil
}

// NewFetcher picks an HTTP fetcher for http(s) base URLs and a file fetcher
// otherwise. A zero timeout leaves the transport default in place.
func NewFetcher(base string, timeout time.Duration) (Fetcher, error) {
	lower := strings.ToLower(base)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return FileFetcher{Dir: base}, nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", base, err)
	}
	// ResolveReference drops the last path segment unless it ends in a slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return HTTPFetcher{Base: u, Client: &http.Client{Timeout: timeout}}, nil
}

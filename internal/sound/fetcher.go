// Package sound downloads the audio clips referenced by a lesson export into a
// local cache directory. A clip is stored under the last segment of its URL
// path; a file that is already present is never downloaded again.
package sound

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Options configures the fetcher
type Options struct {
	CacheDir   string       // Directory downloaded clips are stored in
	HTTPClient *http.Client // Client used for downloads (default: 60s timeout)
	Output     io.Writer    // Progress output (default: os.Stdout)
}

// Fetcher downloads sound files into the cache directory
type Fetcher struct {
	cacheDir   string
	httpClient *http.Client
	out        io.Writer

	downloaded int
	skipped    int
}

// NewFetcher creates a fetcher, creating the cache directory and its
// parents if they do not exist yet
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("sound cache directory not configured")
	}
	if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sound cache directory: %w", err)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return &Fetcher{
		cacheDir:   opts.CacheDir,
		httpClient: client,
		out:        out,
	}, nil
}

// CacheDir returns the directory clips are stored in
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// Fetch makes sure the clip at rawURL is in the cache and returns its file name
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	escaped := EscapeURL(rawURL)

	name, err := FileName(escaped)
	if err != nil {
		return "", err
	}
	target := filepath.Join(f.cacheDir, name)

	if _, err := os.Stat(target); err == nil {
		fmt.Fprintf(f.out, "Skipping download of %s...\n", name)
		f.skipped++
		return name, nil
	}

	fmt.Fprintf(f.out, "Downloading %s...\n", name)
	if err := f.download(ctx, escaped, target); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", name, err)
	}
	f.downloaded++

	return name, nil
}

// Stats returns how many clips were downloaded and how many were already cached
func (f *Fetcher) Stats() (downloaded, skipped int) {
	return f.downloaded, f.skipped
}

// download writes the body to <target>.part and renames it once complete,
// so an interrupted transfer never looks like a cached clip
func (f *Fetcher) download(ctx context.Context, rawURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("User-Agent", "pimsleur2anki")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	partial := target + ".part"
	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return os.Rename(partial, target)
}

// EscapeURL percent-encodes the spaces of a URL
func EscapeURL(rawURL string) string {
	return strings.ReplaceAll(rawURL, " ", "%20")
}

// FileName returns the last segment of the URL path as written in the URL
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid sound URL %q: %w", rawURL, err)
	}

	// RawPath keeps the path exactly as written when it differs from the
	// canonical encoding (e.g. non-ASCII letters)
	p := u.RawPath
	if p == "" {
		p = u.EscapedPath()
	}

	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("sound URL %q has no file name", rawURL)
	}
	return name, nil
}

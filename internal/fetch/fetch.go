// Package fetch downloads template bundles into the global template
// directory. Remote sources are GitHub tree URLs translated to
// raw.githubusercontent.com; local sources are plain directories copied
// verbatim. In both cases templates.yml is obtained first and drives which
// files are fetched.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heikopanjas/vibe-check/internal/debug"
	"github.com/heikopanjas/vibe-check/internal/fsutil"
	"github.com/heikopanjas/vibe-check/internal/manifest"
	"github.com/heikopanjas/vibe-check/internal/ui"
)

const downloadMaxElapsed = 30 * time.Second

func newDownloadBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = downloadMaxElapsed
	return bo
}

// Source describes where a template bundle comes from.
type Source struct {
	// URL is a GitHub tree/blob URL (https://github.com/owner/repo/tree/branch/path)
	// or a local directory path.
	URL string
}

// IsRemote reports whether the source needs HTTP.
func (s Source) IsRemote() bool {
	return strings.HasPrefix(s.URL, "http://") || strings.HasPrefix(s.URL, "https://")
}

// GitHubLocation is the decomposed form of a GitHub tree URL.
type GitHubLocation struct {
	Owner  string
	Repo   string
	Branch string
	Path   string // subdirectory within the repo, may be empty
}

// RawBase returns the raw.githubusercontent.com prefix all file URLs share.
func (l GitHubLocation) RawBase() string {
	base := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", l.Owner, l.Repo, l.Branch)
	if l.Path != "" {
		base += "/" + l.Path
	}
	return base
}

// ParseGitHubURL decomposes a GitHub tree or blob URL. It returns false when
// the URL does not have the expected owner/repo/tree/branch shape.
func ParseGitHubURL(rawURL string) (GitHubLocation, bool) {
	if !strings.Contains(rawURL, "github.com") {
		return GitHubLocation{}, false
	}

	parts := strings.Split(rawURL, "/")
	idx := -1
	for i, p := range parts {
		if p == "github.com" {
			idx = i
			break
		}
	}
	if idx < 0 || len(parts) < idx+5 {
		return GitHubLocation{}, false
	}

	kind := parts[idx+3]
	if kind != "tree" && kind != "blob" {
		return GitHubLocation{}, false
	}

	loc := GitHubLocation{
		Owner:  parts[idx+1],
		Repo:   parts[idx+2],
		Branch: parts[idx+4],
	}
	if len(parts) > idx+5 {
		loc.Path = strings.Join(parts[idx+5:], "/")
	}
	if loc.Owner == "" || loc.Repo == "" || loc.Branch == "" {
		return GitHubLocation{}, false
	}
	return loc, true
}

// Fetcher downloads template bundles.
type Fetcher struct {
	client *http.Client
	out    io.Writer
}

// New returns a Fetcher writing progress to out. A nil client gets a default
// with a per-request timeout.
func New(client *http.Client, out io.Writer) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if out == nil {
		out = io.Discard
	}
	return &Fetcher{client: client, out: out}
}

// Fetch populates templateDir from the source. Remote sources download
// templates.yml then each file it references; local sources are copied as a
// directory tree. templates.yml failures are fatal, individual template file
// failures are reported and skipped.
func (f *Fetcher) Fetch(ctx context.Context, src Source, templateDir string) error {
	if src.IsRemote() {
		return f.fetchRemote(ctx, src.URL, templateDir)
	}
	return f.fetchLocal(src.URL, templateDir)
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL, templateDir string) error {
	loc, ok := ParseGitHubURL(rawURL)
	if !ok {
		return fmt.Errorf("invalid GitHub URL %q: expected https://github.com/owner/repo/tree/branch/path", rawURL)
	}

	fmt.Fprintf(f.out, "%s Repository: %s/%s (branch: %s)\n",
		ui.RenderAccent(ui.IconStep), loc.Owner, loc.Repo, loc.Branch)

	base := loc.RawBase()

	data, err := f.get(ctx, base+"/"+manifest.ManifestFileName)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", manifest.ManifestFileName, err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFile(filepath.Join(templateDir, manifest.ManifestFileName), data); err != nil {
		return err
	}

	for _, source := range m.Sources() {
		dest, err := fsutil.JoinLocal(templateDir, source)
		if err != nil {
			fmt.Fprintf(f.out, "%s Skipping %s: outside the template directory\n", ui.RenderFail(ui.IconFail), source)
			debug.Logf("source rejected: %v", err)
			continue
		}
		fmt.Fprintf(f.out, "%s Downloading %s... ", ui.RenderAccent(ui.IconStep), source)
		body, err := f.get(ctx, base+"/"+source)
		if err != nil {
			fmt.Fprintf(f.out, "%s (skipped)\n", ui.RenderFail(ui.IconFail))
			debug.Logf("download %s failed: %v", source, err)
			continue
		}
		if err := fsutil.WriteFile(dest, body); err != nil {
			return err
		}
		fmt.Fprintf(f.out, "%s\n", ui.RenderPass(ui.IconPass))
	}

	fmt.Fprintf(f.out, "%s Templates downloaded successfully\n", ui.RenderPass(ui.IconPass))
	return nil
}

func (f *Fetcher) fetchLocal(dir, templateDir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("template source %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template source %s is not a directory", dir)
	}
	if !manifest.Exists(dir) {
		return fmt.Errorf("template source %s has no %s", dir, manifest.ManifestFileName)
	}
	fmt.Fprintf(f.out, "%s Copying templates from %s\n", ui.RenderAccent(ui.IconStep), dir)
	return fsutil.CopyDir(dir, templateDir)
}

// get performs one HTTP GET with retry for transient failures. Client-side
// 4xx statuses other than 429 are permanent.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	bo := newDownloadBackoff()
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return err // Network errors are retryable
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want GitHubLocation
		ok   bool
	}{
		{
			name: "tree URL with path",
			url:  "https://github.com/heikopanjas/vibe-check-templates/tree/main/templates",
			want: GitHubLocation{Owner: "heikopanjas", Repo: "vibe-check-templates", Branch: "main", Path: "templates"},
			ok:   true,
		},
		{
			name: "tree URL without path",
			url:  "https://github.com/owner/repo/tree/develop",
			want: GitHubLocation{Owner: "owner", Repo: "repo", Branch: "develop"},
			ok:   true,
		},
		{
			name: "nested path",
			url:  "https://github.com/owner/repo/tree/main/a/b/c",
			want: GitHubLocation{Owner: "owner", Repo: "repo", Branch: "main", Path: "a/b/c"},
			ok:   true,
		},
		{
			name: "blob URL accepted",
			url:  "https://github.com/owner/repo/blob/main/dir",
			want: GitHubLocation{Owner: "owner", Repo: "repo", Branch: "main", Path: "dir"},
			ok:   true,
		},
		{
			name: "not github",
			url:  "https://gitlab.com/owner/repo/tree/main",
			ok:   false,
		},
		{
			name: "repo root without tree segment",
			url:  "https://github.com/owner/repo",
			ok:   false,
		},
		{
			name: "wrong segment kind",
			url:  "https://github.com/owner/repo/releases/v1",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGitHubURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRawBase(t *testing.T) {
	loc := GitHubLocation{Owner: "o", Repo: "r", Branch: "main", Path: "templates"}
	want := "https://raw.githubusercontent.com/o/r/main/templates"
	if got := loc.RawBase(); got != want {
		t.Errorf("RawBase = %q, want %q", got, want)
	}

	loc.Path = ""
	want = "https://raw.githubusercontent.com/o/r/main"
	if got := loc.RawBase(); got != want {
		t.Errorf("RawBase without path = %q, want %q", got, want)
	}
}

func TestFetchRemote(t *testing.T) {
	files := map[string]string{
		"/templates.yml": "version: 1\nmain:\n  source: AGENTS.md\n  target: $workspace/AGENTS.md\nprinciples:\n  - source: principles/general.md\n    target: $instructions\n",
		"/AGENTS.md":     "# Agents\n",
		// principles/general.md intentionally missing to exercise skip
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(srv.Client(), io.Discard)

	// Point the fetcher at the test server by rewriting the raw base through
	// a transport, since real URLs always resolve to raw.githubusercontent.com.
	f.client.Transport = rewriteHost(srv, f.client.Transport)

	err := f.Fetch(context.Background(), Source{URL: "https://github.com/o/r/tree/main"}, dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "templates.yml"))
	if err != nil {
		t.Fatalf("templates.yml not written: %v", err)
	}
	if len(got) == 0 {
		t.Error("templates.yml is empty")
	}
	if _, err := os.ReadFile(filepath.Join(dir, "AGENTS.md")); err != nil {
		t.Errorf("AGENTS.md not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "principles", "general.md")); err == nil {
		t.Error("missing remote file should be skipped, not written")
	}
}

func TestFetchRemoteRejectsEscapingSource(t *testing.T) {
	files := map[string]string{
		"/templates.yml": "version: 1\nmain:\n  source: AGENTS.md\n  target: $workspace/AGENTS.md\nprinciples:\n  - source: ../evil.md\n    target: $instructions\n",
		"/AGENTS.md":     "# Agents\n",
		"/evil.md":       "owned\n",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	defer srv.Close()

	parent := t.TempDir()
	dir := filepath.Join(parent, "templates")
	f := New(srv.Client(), io.Discard)
	f.client.Transport = rewriteHost(srv, f.client.Transport)

	if err := f.Fetch(context.Background(), Source{URL: "https://github.com/o/r/tree/main"}, dir); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if _, err := os.Stat(filepath.Join(parent, "evil.md")); err == nil {
		t.Error("source escaped the template directory")
	}
	if _, err := os.Stat(filepath.Join(dir, "evil.md")); err == nil {
		t.Error("escaping source should be skipped entirely")
	}
	if _, err := os.Stat(filepath.Join(dir, "AGENTS.md")); err != nil {
		t.Errorf("AGENTS.md not written: %v", err)
	}
}

func TestFetchRemoteManifestMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := New(srv.Client(), io.Discard)
	f.client.Transport = rewriteHost(srv, f.client.Transport)

	err := f.Fetch(context.Background(), Source{URL: "https://github.com/o/r/tree/main"}, t.TempDir())
	if err == nil {
		t.Fatal("Fetch with missing templates.yml succeeded, want error")
	}
}

func TestFetchRemoteBadURL(t *testing.T) {
	f := New(nil, io.Discard)
	err := f.Fetch(context.Background(), Source{URL: "https://example.com/not/github"}, t.TempDir())
	if err == nil {
		t.Fatal("Fetch with non-GitHub URL succeeded, want error")
	}
}

func TestFetchLocal(t *testing.T) {
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "templates.yml"), "version: 1\n")
	writeTestFile(t, filepath.Join(src, "languages", "go.md"), "# Go\n")

	dst := t.TempDir()
	f := New(nil, io.Discard)
	if err := f.Fetch(context.Background(), Source{URL: src}, dst); err != nil {
		t.Fatalf("Fetch local: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "templates.yml")); err != nil {
		t.Errorf("templates.yml not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "languages", "go.md")); err != nil {
		t.Errorf("nested file not copied: %v", err)
	}
}

func TestFetchLocalNoManifest(t *testing.T) {
	f := New(nil, io.Discard)
	err := f.Fetch(context.Background(), Source{URL: t.TempDir()}, t.TempDir())
	if err == nil {
		t.Fatal("Fetch from directory without templates.yml succeeded, want error")
	}
}

func TestSourceIsRemote(t *testing.T) {
	if !(Source{URL: "https://github.com/o/r/tree/main"}).IsRemote() {
		t.Error("https URL should be remote")
	}
	if (Source{URL: "/home/user/templates"}).IsRemote() {
		t.Error("local path should not be remote")
	}
}

// rewriteHost redirects every request to the test server regardless of the
// original host, preserving the path.
func rewriteHost(srv *httptest.Server, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		u := *req.URL
		u.Scheme = "http"
		u.Host = srv.Listener.Addr().String()
		// Strip the raw.githubusercontent.com owner/repo/branch prefix so the
		// handler sees bundle-relative paths.
		u.Path = "/" + lastSegments(u.Path)
		clone := req.Clone(req.Context())
		clone.URL = &u
		clone.Host = u.Host
		return base.RoundTrip(clone)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// lastSegments strips the leading owner/repo/branch from a raw content path.
func lastSegments(p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	if len(segs) <= 3 {
		return p
	}
	return strings.Join(segs[3:], "/")
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const adPage = `<html><body>
<h1 data-cy="adPageAdTitle">Sunny flat</h1>
<strong data-cy="adPageHeaderPrice">3 200 zł</strong>
<a aria-label="Adres" href="#map">Warszawa, Mokotów</a>
<div data-cy="table-label-content">Czynsz</div><div>650 zł</div>
<div data-cy="adPageAdDescription">Two rooms</div>
</body></html>`

const searchPage = `<html><body>
<div data-cy="search.listing.promoted"><ul>
<li><a data-cy="listing-item-link" href="/pl/oferta/promoted-ID1">ad</a></li>
</ul></div>
<div data-cy="search.listing.organic"><ul>
<li><a data-cy="listing-item-link" href="/pl/oferta/organic-ID2">ad</a></li>
<li><a data-cy="listing-item-link" href="/pl/oferta/promoted-ID1">ad</a></li>
</ul></div>
</body></html>`

const noResultsPage = `<html><body><div data-cy="no-search-results">Nic</div></body></html>`

// newSiteServer serves one page of search results, a no-results page after
// it, and the ad page on every /ad/ path.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(searchPage))
			return
		}
		_, _ = w.Write([]byte(noResultsPage))
	})
	mux.HandleFunc("/ad/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(adPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// executeCmd runs the root command with args and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

// httpArgs are the flags that make commands fetch with plain HTTP and no
// rate limit.
func httpArgs(extra ...string) []string {
	return append([]string{"--render", "http", "--rate", "0"}, extra...)
}

func TestResolveListURLs(t *testing.T) {
	t.Parallel()

	lines := []string{
		"/pl/oferta/a",
		"",
		"   ",
		"https://example.com/pl/oferta/b",
		"pl/oferta/c",
		"  /pl/oferta/d  ",
	}
	got := resolveListURLs("https://www.otodom.pl/", lines)
	want := []string{
		"https://www.otodom.pl/pl/oferta/a",
		"https://example.com/pl/oferta/b",
		"https://www.otodom.pl/pl/oferta/c",
		"https://www.otodom.pl/pl/oferta/d",
	}
	if !slices.Equal(got, want) {
		t.Errorf("resolveListURLs() = %v, want %v", got, want)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://www.otodom.pl/pl/oferta/a", want: true},
		{in: "http://localhost:8000", want: true},
		{in: "urls.txt", want: false},
		{in: "/tmp/ads", want: false},
		{in: "ftp://example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := isURL(tt.in); got != tt.want {
				t.Errorf("isURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBrowserProxy(t *testing.T) {
	t.Parallel()

	if got := browserProxy("127.0.0.1:9050"); got != "socks5://127.0.0.1:9050" {
		t.Errorf("browserProxy(host:port) = %q", got)
	}
	if got := browserProxy("socks5://proxy:1080"); got != "socks5://proxy:1080" {
		t.Errorf("browserProxy(url) = %q", got)
	}
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte("/a\n\n/b\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	lines, err := readLines(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 || lines[0] != "/a" || strings.TrimSpace(lines[2]) != "/b" {
		t.Errorf("readLines() = %q", lines)
	}

	if _, err := readLines(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	t.Run("empty path writes to fallback", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := writeOutput("", &buf, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "x" {
			t.Errorf("fallback got %q", buf.String())
		}
	})

	t.Run("creates parent directories and replaces the file", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested")
		path := filepath.Join(dir, "out.txt")
		for _, content := range []string{"first", "second"} {
			if err := writeOutput(path, nil, []byte(content)); err != nil {
				t.Fatal(err)
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "second" {
			t.Errorf("file content = %q", data)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the output file, got %d entries", len(entries))
		}
	})
}

func TestPrepare_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, _, err := executeCmd(t, "scan", "--render", "carrier-pigeon", "--no-store", "https://example.com/search?page=1")
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("expected configuration error, got %v", err)
	}

	_, _, err = executeCmd(t, "parse", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--no-store", "x.txt")
	if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("expected missing config error, got %v", err)
	}
}

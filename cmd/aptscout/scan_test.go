package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()
	if cmd.Use != "scan <search-url>" {
		t.Errorf("unexpected use %q", cmd.Use)
	}
	flag := cmd.Flags().Lookup("max-pages")
	if flag == nil || flag.Shorthand != "p" || flag.DefValue != "500" {
		t.Errorf("unexpected max-pages flag: %+v", flag)
	}
	if cmd.Flags().Lookup("output") == nil {
		t.Error("expected output flag")
	}
}

func TestRunScan(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t)
	want := "/pl/oferta/promoted-ID1\n/pl/oferta/organic-ID2\n"

	t.Run("prints urls in discovery order", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := executeCmd(t, append([]string{"scan"}, httpArgs("--no-store", srv.URL+"/search?page=1")...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != want {
			t.Errorf("stdout = %q, want %q", stdout, want)
		}
	})

	t.Run("writes output file", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "urls.txt")
		if _, _, err := executeCmd(t, append([]string{"scan", "-o", out}, httpArgs("--no-store", srv.URL+"/search?page=1")...)...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("file = %q, want %q", data, want)
		}
	})

	t.Run("page limit keeps partial results", func(t *testing.T) {
		t.Parallel()
		stdout, stderr, err := executeCmd(t, append([]string{"scan", "-p", "1"}, httpArgs("--no-store", srv.URL+"/search?page=1")...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != want {
			t.Errorf("stdout = %q, want %q", stdout, want)
		}
		if !strings.Contains(stderr, "page limit") {
			t.Errorf("expected page limit warning, got %q", stderr)
		}
	})

	t.Run("records scan in the store", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		if _, _, err := executeCmd(t, append([]string{"scan", "--db-dir", dbDir}, httpArgs(srv.URL+"/search?page=1")...)...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "1 scans") || !strings.Contains(stdout, srv.URL+"/search?page=1") {
			t.Errorf("unexpected history output:\n%s", stdout)
		}

		stdout, _, err = executeCmd(t, "history", "--urls", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("history --urls failed: %v", err)
		}
		if !strings.Contains(stdout, "2 listing URLs from 1 scans") || !strings.Contains(stdout, "/pl/oferta/organic-ID2") {
			t.Errorf("unexpected history --urls output:\n%s", stdout)
		}
	})
}

func TestRunScan_FailureKeepsOutput(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	out := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(out, []byte("/pl/oferta/old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := executeCmd(t, append([]string{"scan", "-o", out}, httpArgs("--no-store", srv.URL+"/search?page=1")...)...); err == nil {
		t.Fatal("expected error for failing search page")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/pl/oferta/old\n" {
		t.Errorf("output file changed to %q", data)
	}
}

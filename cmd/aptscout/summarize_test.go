package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const sampleRecord = `{
    "Title": "Sunny flat",
    "Price": "3 200 zł",
    "Details": {"Czynsz": "650 zł"},
    "URL": "https://www.otodom.pl/pl/oferta/sunny-ID1"
}`

// newFakeOpenAI answers every chat completion with a fixed summary.
func newFakeOpenAI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	summary, _ := json.Marshal(`{"Title":"Sunny flat","Price":{"Rent":3200,"Administrative":650,"Parking":0}}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`, summary)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// These tests set process environment variables and cannot run in parallel.

func TestRunSummarizeCmd_Dir(t *testing.T) {
	srv, calls := newFakeOpenAI(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")

	adsDir := t.TempDir()
	for _, name := range []string{"0.json", "1.json"} {
		if err := os.WriteFile(filepath.Join(adsDir, name), []byte(sampleRecord), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	outDir := filepath.Join(t.TempDir(), "gpt")

	if _, _, err := executeCmd(t, "gpt", "-o", outDir, adsDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"0.ai.json", "1.ai.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if !strings.Contains(string(data), `"Rent": 3200`) {
			t.Errorf("%s has unexpected content:\n%s", name, data)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 API calls, got %d", got)
	}

	// A second run finds both summaries and skips them.
	if _, _, err := executeCmd(t, "summarize", "-o", outDir, adsDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected existing summaries to be skipped, got %d calls", got)
	}

	// The generated summaries feed the filter command.
	stdout, _, err := executeCmd(t, "filter", "-l", "5000", outDir)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if !strings.Contains(stdout, `"totalPrice": 3850`) {
		t.Errorf("unexpected filter output:\n%s", stdout)
	}
}

func TestRunSummarizeCmd_File(t *testing.T) {
	srv, _ := newFakeOpenAI(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")

	record := filepath.Join(t.TempDir(), "0.json")
	if err := os.WriteFile(record, []byte(sampleRecord), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := executeCmd(t, "summarize", record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, `"Title": "Sunny flat"`) {
		t.Errorf("expected summary on stdout, got %q", stdout)
	}
}

func TestRunSummarizeCmd_Errors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	record := filepath.Join(t.TempDir(), "0.json")
	if err := os.WriteFile(record, []byte(sampleRecord), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := executeCmd(t, "summarize", record); err == nil {
		t.Error("expected error without an API key")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test-key")
	_, _, err := executeCmd(t, "summarize", "-p", "x", "--prompt-file", record, record)
	if err == nil || !strings.Contains(err.Error(), "cannot be used together") {
		t.Errorf("expected prompt conflict error, got %v", err)
	}
}

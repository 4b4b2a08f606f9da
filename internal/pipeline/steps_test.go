package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/aptscout/internal/fetch"
	"github.com/nao1215/aptscout/internal/model"
)

const adPage = `<html><body>
<h1 data-cy="adPageAdTitle">Sunny flat</h1>
<strong data-cy="adPageHeaderPrice">3 200 zł</strong>
<a aria-label="Adres" href="#map">Warszawa, Mokotów</a>
<div data-cy="table-label-content">Czynsz</div><div>650 zł</div>
<div data-cy="adPageAdDescription">Two rooms</div>
<button data-cy="button-share">Share</button>
</body></html>`

func staticFetcher(body string) fetch.Fetcher {
	return fetch.FetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte(body), nil
	})
}

type memStore struct {
	mu   sync.Mutex
	urls []string
}

func (m *memStore) SaveAd(_ context.Context, url string, _ *model.AdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, url)
	return nil
}

type fakeSummarizer struct {
	err error
}

func (f fakeSummarizer) Summarize(_ context.Context, ad *model.AdRecord) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	title, _ := ad.Get(model.FieldTitle)
	return map[string]any{"title": title.String(), "price": map[string]any{"rent": json.Number("3200")}}, nil
}

func TestScrapAd(t *testing.T) {
	t.Parallel()

	rec, err := ScrapAd(t.Context(), staticFetcher(adPage), "https://example.com/ad/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checks := map[string]string{
		model.FieldTitle:    "Sunny flat",
		model.FieldPrice:    "3 200 zł",
		model.FieldLocation: "Warszawa, Mokotów",
		model.FieldURL:      "https://example.com/ad/1",
	}
	for key, want := range checks {
		got, ok := rec.Get(key)
		if !ok || got.String() != want {
			t.Errorf("%s = %q (present %v), want %q", key, got.String(), ok, want)
		}
	}
	if got := rec.Details["Czynsz"].String(); got != "650 zł" {
		t.Errorf("Details[Czynsz] = %q, want %q", got, "650 zł")
	}
}

func TestScrapAd_FetchError(t *testing.T) {
	t.Parallel()

	errDown := errors.New("down")
	failing := fetch.FetcherFunc(func(context.Context, string) ([]byte, error) { return nil, errDown })
	if _, err := ScrapAd(t.Context(), failing, "https://example.com/ad/1"); !errors.Is(err, errDown) {
		t.Errorf("expected errDown, got %v", err)
	}
}

func TestParsePipeline(t *testing.T) {
	t.Parallel()

	t.Run("writes record and stores it", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := &memStore{}
		var echo bytes.Buffer
		jobs := ParseJobs([]string{"https://example.com/ad/1"}, dir)

		p := NewParsePipeline(ParseOptions{Fetcher: staticFetcher(adPage), Store: store, Echo: &echo})
		if err := p.Execute(t.Context(), jobs[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "0.json"))
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		if !strings.Contains(string(data), `"Title": "Sunny flat"`) {
			t.Errorf("unexpected record: %s", data)
		}
		if !bytes.Equal(echo.Bytes(), data) {
			t.Error("expected echo to match written record")
		}
		if len(store.urls) != 1 || store.urls[0] != "https://example.com/ad/1" {
			t.Errorf("unexpected stored urls: %v", store.urls)
		}
	})

	t.Run("skips existing output unless forced", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "0.json")
		if err := os.WriteFile(out, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}

		job := ParseJobs([]string{"https://example.com/ad/1"}, dir)[0]
		if err := NewParsePipeline(ParseOptions{Fetcher: staticFetcher(adPage)}).Execute(t.Context(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !job.Skipped {
			t.Error("expected job to be skipped")
		}

		job = ParseJobs([]string{"https://example.com/ad/1"}, dir)[0]
		if err := NewParsePipeline(ParseOptions{Fetcher: staticFetcher(adPage), Force: true}).Execute(t.Context(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, _ := os.ReadFile(out)
		if string(data) == "{}" {
			t.Error("expected forced run to overwrite output")
		}
	})
}

func TestSummarizePipeline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recordPath := filepath.Join(dir, "7.json")
	rec := model.NewAdRecord()
	rec.Set(model.FieldTitle, model.Scalar("Loft"))
	rec.Set(model.FieldURL, model.Scalar("https://example.com/ad/7"))
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(recordPath, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("writes summary next to stem", func(t *testing.T) {
		t.Parallel()

		outDir := t.TempDir()
		job := SummarizeJobs([]string{recordPath}, outDir)[0]
		if err := NewSummarizePipeline(SummarizeOptions{Summarizer: fakeSummarizer{}}).Execute(t.Context(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.URL != "https://example.com/ad/7" {
			t.Errorf("expected URL from record, got %q", job.URL)
		}
		out, err := os.ReadFile(filepath.Join(outDir, "7.ai.json"))
		if err != nil {
			t.Fatalf("expected summary file: %v", err)
		}
		if !strings.Contains(string(out), "\n  \"price\"") || !strings.Contains(string(out), `"rent": 3200`) {
			t.Errorf("unexpected summary: %s", out)
		}
	})

	t.Run("summarizer error fails job", func(t *testing.T) {
		t.Parallel()

		errAPI := errors.New("api down")
		job := SummarizeJobs([]string{recordPath}, t.TempDir())[0]
		err := NewSummarizePipeline(SummarizeOptions{Summarizer: fakeSummarizer{err: errAPI}}).Execute(t.Context(), job)
		if !errors.Is(err, errAPI) {
			t.Errorf("expected errAPI, got %v", err)
		}
	})
}

func TestStepsRequireInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step Step
		want error
	}{
		{name: "extract without body", step: NewExtractStep(nil), want: ErrNoBody},
		{name: "write ad without record", step: NewWriteAdStep(nil), want: ErrNoRecord},
		{name: "store without record", step: NewStoreStep(&memStore{}), want: ErrNoRecord},
		{name: "summarize without record", step: NewSummarizeStep(fakeSummarizer{}), want: ErrNoRecord},
		{name: "write summary without summary", step: NewWriteSummaryStep(nil), want: ErrNoSummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.step.Do(t.Context(), &Job{}); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRecordFilesAndNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"1.json", "2.json", "1.ai.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files, err := RecordFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 record files, got %v", files)
	}
	if got := SummaryName(files[0]); got != "1.ai.json" {
		t.Errorf("SummaryName = %q, want 1.ai.json", got)
	}
}

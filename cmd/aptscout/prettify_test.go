package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunPrettifyCmd(t *testing.T) {
	t.Parallel()

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		files := map[string]string{
			"0.json":      `{"b":1,"a":[1,2]}`,
			"0.ai.json":   `{"Price":{"Rent":1}}`,
			"broken.json": `{"a":`,
			"notes.txt":   `{"a":1}`,
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}
		}

		if _, _, err := executeCmd(t, "prettify", dir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[string]string{
			"0.json":      "{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}",
			"0.ai.json":   "{\n  \"Price\": {\n    \"Rent\": 1\n  }\n}",
			"broken.json": `{"a":`,
			"notes.txt":   `{"a":1}`,
		}
		for name, w := range want {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != w {
				t.Errorf("%s = %q, want %q", name, data, w)
			}
		}
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "0.json")
		if err := os.WriteFile(path, []byte(`{"a":1}`), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, _, err := executeCmd(t, "prettify", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "{\n  \"a\": 1\n}" {
			t.Errorf("unexpected content %q", data)
		}
	})
}

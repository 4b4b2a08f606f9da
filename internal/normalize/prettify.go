package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Prettify re-indents a JSON document with two spaces, keeping key order.
func Prettify(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return buf.Bytes(), nil
}

// PrettifyFile rewrites the JSON file at path in place.
func PrettifyFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	out, err := Prettify(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// PrettifyDir rewrites every *.json file directly inside dir. A file that
// fails is logged and skipped; the number of rewritten files is returned.
func PrettifyDir(ctx context.Context, dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	done := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		logger.Info("prettifying json file", "path", path)
		if err := PrettifyFile(path); err != nil {
			logger.Error("failed to prettify json file", "path", path, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

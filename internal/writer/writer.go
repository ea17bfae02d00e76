// Package writer serializes merged series to CSV, one file per series key.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Write creates dir if absent and writes header plus rows to filename inside
// it, replacing any existing file. There are no append semantics: a rerun
// overwrites the previous output.
func Write(dir, filename string, header []string, rows [][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writer: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writer: %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writer: %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writer: flush %s: %w", path, err)
	}
	return f.Close()
}

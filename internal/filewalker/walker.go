package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"modtrans/internal/dialect"

	"github.com/rs/zerolog"
)

// Walker traverses directories and classifies every file it finds.
type Walker struct {
	classifier *dialect.Classifier
	log        zerolog.Logger
}

// NewWalker creates a Walker resolving dialects with c.
func NewWalker(c *dialect.Classifier, logger zerolog.Logger) *Walker {
	return &Walker{classifier: c, log: logger}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	// Path is the absolute file path.
	Path string
	// Rel is the path relative to the walked root.
	Rel     string
	Dialect dialect.Dialect
}

// Files lists every regular file under root as a path relative to root, in
// lexical order.
func (w *Walker) Files(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return files, nil
}

// Walk discovers and classifies every file under root. Files no rule
// matches are returned separately, relative to root.
func (w *Walker) Walk(root string) ([]FileEntry, []string, error) {
	files, err := w.Files(root)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root path: %w", err)
	}

	var entries []FileEntry
	var skipped []string
	for _, rel := range files {
		d, ok := w.classifier.Classify(rel)
		if !ok {
			w.log.Warn().Str("file", rel).Msg("Unsupported file, skipped")
			skipped = append(skipped, rel)
			continue
		}
		entries = append(entries, FileEntry{Path: filepath.Join(abs, rel), Rel: rel, Dialect: d})
	}

	w.log.Info().Int("count", len(entries)).Int("skipped", len(skipped)).Str("root", abs).Msg("Discovered files")
	return entries, skipped, nil
}

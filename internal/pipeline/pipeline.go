// Package pipeline runs the forward pass, which extracts original assets into
// record files, and the reverse pass, which restores assets from edited
// record files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modtrans/internal/charset"
	"modtrans/internal/config"
	"modtrans/internal/dialect"
	"modtrans/internal/filewalker"
	"modtrans/internal/memory"
	"modtrans/internal/parser"
	"modtrans/internal/worker"

	"github.com/rs/zerolog"
)

// ErrProjectStructure is returned when a directory a pass reads from is missing.
var ErrProjectStructure = errors.New("project structure incomplete")

// RecordSuffix is appended to an asset path to name its record file.
const RecordSuffix = ".json"

// Pipeline wires the engine to the project directories.
type Pipeline struct {
	cfg        *config.Config
	classifier *dialect.Classifier
	walker     *filewalker.Walker
	engine     *parser.Engine
	detector   *charset.Detector
	memory     memory.Store
	log        zerolog.Logger
}

// New creates a pipeline. store may be nil to disable the translation memory.
func New(
	cfg *config.Config,
	classifier *dialect.Classifier,
	engine *parser.Engine,
	detector *charset.Detector,
	store memory.Store,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		walker:     filewalker.NewWalker(classifier, logger),
		engine:     engine,
		detector:   detector,
		memory:     store,
		log:        logger,
	}
}

// outcome is what processing one file produced.
type outcome struct {
	records int
	bytes   int
	// skip is non-empty when the file was deliberately not processed.
	skip string
	lost int
}

type fileFunc func(ctx context.Context, e filewalker.FileEntry) (outcome, error)

// process runs fn over entries and reports the outcomes in entry order.
func (p *Pipeline) process(ctx context.Context, rep *reporter, entries []filewalker.FileEntry, fn fileFunc) {
	pool := worker.NewPool(p.cfg.WorkerCount, worker.ProcessFunc[filewalker.FileEntry, outcome](fn), p.log)
	for _, task := range pool.Execute(ctx, entries) {
		if !task.Done {
			continue
		}
		rel := task.Input.Rel
		rep.start(rel)
		switch {
		case task.Err != nil:
			rep.failed(rel, task.Err)
		case task.Result.skip != "":
			rep.skipped(rel, task.Result.skip)
		case task.Result.records == 0:
			rep.empty(rel)
		default:
			rep.processed(task.Result)
		}
	}
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, ErrProjectStructure)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", path, ErrProjectStructure)
	}
	return nil
}

// cleanDir removes dir and recreates it empty.
func cleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// readAsset decodes an asset file. The skip reason is set when the encoding
// could not be repaired.
func (p *Pipeline) readAsset(path, rel string) (text, skip string, err error) {
	dec, err := p.detector.ReadFile(path)
	if errors.Is(err, charset.ErrLowConfidence) {
		return "", "low encoding confidence", nil
	}
	if err != nil {
		return "", "", err
	}
	if dec.Encoding != charset.UTF8 {
		p.log.Info().Str("file", rel).Str("encoding", dec.Encoding).Float64("confidence", dec.Confidence).Msg("Decoded legacy encoding")
	}
	return dec.Text, "", nil
}

// companion reads the reference or translation copy of rel under root. A
// missing or undecodable copy is reported as absent.
func (p *Pipeline) companion(root, rel string, translation bool) (string, bool) {
	path := filepath.Join(root, p.classifier.Companion(rel, translation))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	dec, err := p.detector.ReadFile(path)
	if err != nil {
		p.log.Warn().Err(err).Str("file", rel).Str("copy", path).Msg("Companion copy unreadable, ignored")
		return "", false
	}
	return dec.Text, true
}

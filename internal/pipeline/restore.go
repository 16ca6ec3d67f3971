package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modtrans/internal/filewalker"
	"modtrans/internal/interpolation"
	"modtrans/internal/memory"
	"modtrans/internal/record"
)

// Restore rebuilds every asset that has an edited record file in the
// download directory. The result directory is rebuilt from scratch.
func (p *Pipeline) Restore(ctx context.Context) (Summary, error) {
	root := p.cfg.DownloadedDir
	if err := requireDir(root); err != nil {
		return Summary{}, err
	}
	if err := requireDir(p.cfg.OriginalRoot()); err != nil {
		return Summary{}, err
	}
	if err := cleanDir(p.cfg.ResultDir); err != nil {
		return Summary{}, err
	}

	files, err := p.walker.Files(root)
	if err != nil {
		return Summary{}, err
	}

	rep := newReporter("restore", p.log)
	entries := make([]filewalker.FileEntry, 0, len(files))
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), RecordSuffix) {
			rep.skipped(f, "not a record file")
			continue
		}
		rel := f[:len(f)-len(RecordSuffix)]
		d, ok := p.classifier.Classify(rel)
		if !ok {
			rep.skipped(f, "unsupported asset")
			continue
		}
		entries = append(entries, filewalker.FileEntry{Path: filepath.Join(root, f), Rel: rel, Dialect: d})
	}

	p.process(ctx, rep, entries, p.restoreFile)
	return rep.finish(), ctx.Err()
}

func (p *Pipeline) restoreFile(ctx context.Context, e filewalker.FileEntry) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	recs, err := record.ReadFile(e.Path)
	if err != nil {
		return outcome{}, err
	}
	if len(recs) == 0 {
		return outcome{}, nil
	}

	original, skip, err := p.readAsset(filepath.Join(p.cfg.OriginalRoot(), e.Rel), e.Rel)
	if err != nil || skip != "" {
		return outcome{skip: skip}, err
	}

	content, err := p.engine.Restore(e.Dialect, e.Rel, original, recs)
	if err != nil {
		return outcome{}, err
	}

	out := filepath.Join(p.cfg.ResultDir, p.classifier.OutputPath(e.Rel))
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return outcome{}, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(content), 0644); err != nil {
		return outcome{}, fmt.Errorf("write output file: %w", err)
	}

	if p.memory != nil {
		if err := p.memory.Remember(ctx, memory.Entries(e.Rel, recs)); err != nil {
			p.log.Warn().Err(err).Str("file", e.Rel).Msg("Failed to update translation memory")
		}
	}

	return outcome{records: len(recs), bytes: len(content), lost: p.checkPlaceholders(e.Rel, recs)}, nil
}

// checkPlaceholders warns about translations that dropped a format variable
// of their original and returns how many did.
func (p *Pipeline) checkPlaceholders(rel string, recs []record.Record) int {
	n := 0
	for _, r := range recs {
		if r.Translation == "" || r.IsExtra() {
			continue
		}
		lost := interpolation.Lost(r.Original, r.Translation)
		if len(lost) == 0 {
			continue
		}
		n++
		p.log.Warn().Str("file", rel).Str("key", r.Key).Strs("lost", lost).Msg("Translation dropped placeholders")
	}
	return n
}

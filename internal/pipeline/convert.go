package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"modtrans/internal/filewalker"
	"modtrans/internal/memory"
	"modtrans/internal/parser"
	"modtrans/internal/record"
)

// Convert extracts every classified original asset into a record file under
// the converted directory, which is rebuilt from scratch.
func (p *Pipeline) Convert(ctx context.Context) (Summary, error) {
	root := p.cfg.OriginalRoot()
	if err := requireDir(root); err != nil {
		return Summary{}, err
	}
	if err := cleanDir(p.cfg.ConvertedDir); err != nil {
		return Summary{}, err
	}

	entries, unsupported, err := p.walker.Walk(root)
	if err != nil {
		return Summary{}, err
	}

	rep := newReporter("convert", p.log)
	rep.summary.Skipped += len(unsupported)
	p.process(ctx, rep, entries, p.convertFile)
	return rep.finish(), ctx.Err()
}

func (p *Pipeline) convertFile(ctx context.Context, e filewalker.FileEntry) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	text, skip, err := p.readAsset(e.Path, e.Rel)
	if err != nil || skip != "" {
		return outcome{skip: skip}, err
	}

	in := parser.Input{Path: e.Rel, Original: text}
	in.Reference, in.HasReference = p.companion(p.cfg.ReferenceRoot(), e.Rel, false)
	in.Translation, in.HasTranslation = p.companion(p.cfg.TranslationRoot(), e.Rel, true)

	recs, err := p.engine.Extract(e.Dialect, in)
	if err != nil {
		return outcome{}, err
	}
	if len(recs) == 0 {
		return outcome{}, nil
	}

	if p.memory != nil {
		if n := memory.Annotate(ctx, p.memory, recs); n > 0 {
			p.log.Debug().Str("file", e.Rel).Int("suggestions", n).Msg("Annotated from translation memory")
		}
	}

	n, err := record.WriteFile(filepath.Join(p.cfg.ConvertedDir, e.Rel+RecordSuffix), recs)
	if err != nil {
		return outcome{}, fmt.Errorf("write records: %w", err)
	}
	return outcome{records: len(recs), bytes: n}, nil
}

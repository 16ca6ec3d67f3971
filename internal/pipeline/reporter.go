package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// rootGroup names files that sit directly in the walked root.
const rootGroup = "(root)"

// Summary is the outcome of one pass.
type Summary struct {
	Pass      string
	Processed int
	Skipped   int
	Failed    int
	Empty     int
	Records   int
	Bytes     int64
	// Placeholders counts translated records that dropped a format variable.
	Placeholders int
	// Err aggregates every per-file failure.
	Err error
}

// Print writes a human-readable summary to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "%s: %s files processed, %s records, %s written\n",
		s.Pass,
		color.GreenString("%d", s.Processed),
		humanize.Comma(int64(s.Records)),
		humanize.Bytes(uint64(s.Bytes)))
	if s.Empty > 0 {
		fmt.Fprintf(w, "  %s without translatable content\n", color.YellowString("%d", s.Empty))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "  %s skipped\n", color.YellowString("%d", s.Skipped))
	}
	if s.Placeholders > 0 {
		fmt.Fprintf(w, "  %s translations lost a placeholder\n", color.YellowString("%d", s.Placeholders))
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "  %s failed:\n", color.RedString("%d", s.Failed))
		for _, err := range multierr.Errors(s.Err) {
			fmt.Fprintf(w, "    %s\n", err)
		}
	}
}

// groupOf names the reporting group of rel: its first three directory
// components joined with "-".
func groupOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." || dir == "" {
		return rootGroup
	}
	parts := strings.Split(dir, "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "-")
}

// reporter accumulates a Summary and logs a line each time the group of
// consecutive files changes.
type reporter struct {
	log     zerolog.Logger
	summary Summary
	group   string
	count   int
}

func newReporter(pass string, logger zerolog.Logger) *reporter {
	return &reporter{log: logger, summary: Summary{Pass: pass}}
}

// start must be called before reporting on rel.
func (r *reporter) start(rel string) {
	g := groupOf(rel)
	if g != r.group {
		r.flush()
		r.group = g
	}
}

func (r *reporter) flush() {
	if r.group != "" && r.count > 0 {
		r.log.Info().Str("group", r.group).Int("files", r.count).Msgf("%s: %d files", r.group, r.count)
	}
	r.count = 0
}

func (r *reporter) processed(o outcome) {
	r.count++
	r.summary.Processed++
	r.summary.Records += o.records
	r.summary.Bytes += int64(o.bytes)
	r.summary.Placeholders += o.lost
}

func (r *reporter) empty(rel string) {
	r.summary.Empty++
	r.log.Warn().Str("file", rel).Msg("No translatable content")
}

func (r *reporter) skipped(rel, reason string) {
	r.summary.Skipped++
	r.log.Warn().Str("file", rel).Str("reason", reason).Msg("File skipped")
}

func (r *reporter) failed(rel string, err error) {
	r.summary.Failed++
	r.summary.Err = multierr.Append(r.summary.Err, fmt.Errorf("%s: %w", rel, err))
	r.log.Error().Err(err).Str("file", rel).Msg("File failed")
}

func (r *reporter) finish() Summary {
	r.flush()
	r.log.Info().
		Str("pass", r.summary.Pass).
		Int("processed", r.summary.Processed).
		Int("skipped", r.summary.Skipped).
		Int("failed", r.summary.Failed).
		Int("empty", r.summary.Empty).
		Msg("Pass complete")
	return r.summary
}

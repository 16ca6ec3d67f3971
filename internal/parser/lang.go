package parser

import (
	"strconv"
	"strings"

	"modtrans/internal/record"
	"modtrans/internal/textutil"
)

// Structural key prefixes for lines that carry no key of their own.
const (
	blankPrefix     = "BLANK-"
	commentPrefix   = "COMMENT-"
	miscPrefix      = "MISC-"
	duplicatePrefix = "DUPLICATE-"
)

const commentMarker = "#"

// langUnits splits a key=value document. Every physical line becomes a unit;
// only key=value lines are addressable.
func langUnits(content string) []unit {
	lines, _ := textutil.SplitLines(content)
	units := make([]unit, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for idx, line := range lines {
		n := strconv.Itoa(idx)
		trimmed := strings.TrimSpace(line)

		// Blank lines and comments.
		if trimmed == "" {
			units = append(units, unit{key: blankPrefix + n})
			continue
		}
		if strings.HasPrefix(trimmed, commentMarker) {
			units = append(units, unit{key: commentPrefix + n, text: line})
			continue
		}

		eqIdx := strings.Index(line, "=")
		if eqIdx < 0 {
			units = append(units, unit{key: miscPrefix + n, text: line})
			continue
		}

		key := line[:eqIdx]
		if isReserved(key) {
			units = append(units, unit{key: miscPrefix + n, text: line, note: "Key uses a reserved prefix"})
			continue
		}
		if seen[key] {
			units = append(units, unit{key: duplicatePrefix + n, text: line, note: "Duplicate of key " + key})
			continue
		}
		seen[key] = true
		units = append(units, unit{key: key, addr: key, text: line[eqIdx+1:]})
	}
	return units
}

func addressable(units []unit) []unit {
	out := make([]unit, 0, len(units))
	for _, u := range units {
		if u.addr != "" {
			out = append(out, u)
		}
	}
	return out
}

func extractLang(env Env, in Input) ([]record.Record, error) {
	ref, tr := counterparts(env, in, func(content string) ([]unit, int, error) {
		units := addressable(langUnits(content))
		return units, len(units), nil
	})
	return align(env, langUnits(in.Original), ref, tr), nil
}

// isReserved reports whether key could collide with a generated line key.
func isReserved(key string) bool {
	return strings.HasPrefix(key, blankPrefix) || isStructural(key)
}

// isStructural reports whether key names a line restored verbatim.
func isStructural(key string) bool {
	return strings.HasPrefix(key, commentPrefix) ||
		strings.HasPrefix(key, miscPrefix) ||
		strings.HasPrefix(key, duplicatePrefix)
}

// restoreLang rebuilds the document from the records in their stored order.
// The original only contributes its line layout.
func restoreLang(env Env, original string, edited []record.Record) (string, error) {
	_, layout := textutil.SplitLines(original)

	lines := make([]string, 0, len(edited))
	for _, r := range edited {
		if !r.Writable() {
			env.Log.Debug().Str("key", r.Key).Msg("Untranslated extra key skipped")
			continue
		}
		switch {
		case strings.HasPrefix(r.Key, blankPrefix):
			lines = append(lines, "")
		case isStructural(r.Key):
			lines = append(lines, r.Value())
		default:
			lines = append(lines, r.Key+"="+r.Value())
		}
	}
	return textutil.JoinLines(lines, layout), nil
}

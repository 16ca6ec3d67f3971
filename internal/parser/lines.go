package parser

import (
	"strconv"
	"strings"

	"modtrans/internal/record"
	"modtrans/internal/textutil"

	"github.com/samber/lo"
)

// plaintextUnits keys every line by its 0-based index; blank lines get a
// BLANK- key but stay aligned on their index.
func plaintextUnits(content string) ([]unit, int, error) {
	lines, _ := textutil.SplitLines(content)
	units := make([]unit, 0, len(lines))
	for idx, line := range lines {
		n := strconv.Itoa(idx)
		trimmed := strings.TrimSpace(line)
		key := n
		if trimmed == "" {
			key = blankPrefix + n
		}
		units = append(units, unit{key: key, addr: n, text: trimmed})
	}
	return units, len(lines), nil
}

func extractPlaintext(env Env, in Input) ([]record.Record, error) {
	units, size, _ := plaintextUnits(in.Original)
	ref, tr := counterparts(env, in, plaintextUnits)
	demoteOnDrift(env, ref, "reference", size)
	demoteOnDrift(env, tr, "translation", size)
	return align(env, units, ref, tr), nil
}

// restorePlaintext rebuilds the document from the records in their stored
// order. A record addressing an original line keeps that line's surrounding
// whitespace.
func restorePlaintext(env Env, original string, edited []record.Record) (string, error) {
	lines, layout := textutil.SplitLines(original)

	out := make([]string, 0, len(edited))
	for _, r := range edited {
		if !r.Writable() {
			continue
		}
		if strings.HasPrefix(r.Key, blankPrefix) {
			out = append(out, "")
			continue
		}
		value := r.Value()
		if idx, err := strconv.Atoi(r.Key); err == nil && idx >= 0 && idx < len(lines) {
			lead, trail := textutil.Surround(lines[idx])
			value = lead + value + trail
		}
		out = append(out, value)
	}
	return textutil.JoinLines(out, layout), nil
}

// nameListUnits keys every non-empty line by its 1-based line number.
func nameListUnits(content string) ([]unit, int, error) {
	lines, _ := textutil.SplitLines(content)
	units := make([]unit, 0, len(lines))
	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		n := strconv.Itoa(idx + 1)
		units = append(units, unit{key: n, addr: n, text: trimmed})
	}
	return units, len(lines), nil
}

func extractNameList(env Env, in Input) ([]record.Record, error) {
	units, size, _ := nameListUnits(in.Original)
	ref, tr := counterparts(env, in, nameListUnits)
	demoteOnDrift(env, ref, "reference", size)
	demoteOnDrift(env, tr, "translation", size)
	return align(env, units, ref, tr), nil
}

// restoreNameList walks the original lines so that empty lines, which have no
// records, survive.
func restoreNameList(env Env, original string, edited []record.Record) (string, error) {
	lines, layout := textutil.SplitLines(original)
	byKey := lo.KeyBy(edited, func(r record.Record) string { return r.Key })
	used := make(map[string]bool, len(edited))

	for idx, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key := strconv.Itoa(idx + 1)
		r, ok := byKey[key]
		if !ok || !r.Writable() {
			continue
		}
		used[key] = true
		lead, trail := textutil.Surround(line)
		lines[idx] = lead + r.Value() + trail
	}

	for _, r := range edited {
		if !used[r.Key] && r.Writable() {
			env.Log.Warn().Str("key", r.Key).Msg("Record addresses no line, ignored")
		}
	}
	return textutil.JoinLines(lines, layout), nil
}

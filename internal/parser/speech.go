package parser

import (
	"fmt"

	"modtrans/internal/record"

	"github.com/iancoleman/orderedmap"
	"github.com/samber/lo"
)

const (
	speechMember = "speech"
	linesMember  = "lines"
)

func speechKey(group, line int) string {
	return fmt.Sprintf("speech%d.line%d", group, line)
}

// member reads a named member of a decoded JSON object.
func member(v any, name string) (any, bool) {
	switch o := v.(type) {
	case orderedmap.OrderedMap:
		return o.Get(name)
	case *orderedmap.OrderedMap:
		return o.Get(name)
	case map[string]any:
		m, ok := o[name]
		return m, ok
	}
	return nil, false
}

// walkSpeech calls fn for every string line of every speech group. fn gets
// the group's line slice so it can overwrite the line in place.
func walkSpeech(om *orderedmap.OrderedMap, fn func(key string, lines []any, idx int, text string)) error {
	raw, ok := om.Get(speechMember)
	if !ok {
		return fmt.Errorf("%w: no %q member", ErrMalformed, speechMember)
	}
	groups, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("%w: %q is not a list", ErrMalformed, speechMember)
	}

	for g, item := range groups {
		rawLines, ok := member(item, linesMember)
		if !ok {
			continue
		}
		lines, ok := rawLines.([]any)
		if !ok {
			continue
		}
		for l, line := range lines {
			if text, ok := line.(string); ok {
				fn(speechKey(g, l), lines, l, text)
			}
		}
	}
	return nil
}

func parseSpeech(content string) ([]unit, int, error) {
	om, err := decodeObject(content)
	if err != nil {
		return nil, 0, err
	}
	var units []unit
	err = walkSpeech(om, func(key string, _ []any, _ int, text string) {
		units = append(units, unit{key: key, addr: key, text: text})
	})
	if err != nil {
		return nil, 0, err
	}
	return units, len(units), nil
}

func extractSpeech(env Env, in Input) ([]record.Record, error) {
	units, _, err := parseSpeech(in.Original)
	if err != nil {
		return nil, err
	}
	ref, tr := counterparts(env, in, parseSpeech)
	return align(env, units, ref, tr), nil
}

// restoreSpeech overwrites matching lines of the parsed original. Group and
// line counts never change.
func restoreSpeech(env Env, original string, edited []record.Record) (string, error) {
	om, err := decodeObject(original)
	if err != nil {
		return "", err
	}
	byKey := lo.KeyBy(edited, func(r record.Record) string { return r.Key })
	used := make(map[string]bool, len(edited))

	err = walkSpeech(om, func(key string, lines []any, idx int, _ string) {
		r, ok := byKey[key]
		if !ok || !r.Writable() {
			return
		}
		used[key] = true
		lines[idx] = r.Value()
	})
	if err != nil {
		return "", err
	}

	for _, r := range edited {
		if !used[r.Key] && r.Writable() {
			env.Log.Warn().Str("key", r.Key).Msg("Record addresses no speech line, ignored")
		}
	}
	return encodeJSON(om, original)
}

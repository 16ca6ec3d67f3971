package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"modtrans/internal/record"

	"github.com/iancoleman/orderedmap"
)

// decodeObject parses a JSON object keeping its key order. Numbers decode as
// json.Number so unaddressed values are written back with their literal text.
func decodeObject(content string) (*orderedmap.OrderedMap, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	om, ok := v.(*orderedmap.OrderedMap)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}
	return om, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		om := orderedmap.New()
		om.SetEscapeHTML(false)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			om.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return om, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// encodeJSON writes v with two-space indentation and no HTML escaping. The
// trailing newline follows the original document.
func encodeJSON(v any, original string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	out := buf.String()
	if !strings.HasSuffix(original, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out, nil
}

// jsonMapUnits lists the string members of a flat language object. Members
// with other value types are not translatable and are skipped.
func jsonMapUnits(om *orderedmap.OrderedMap) []unit {
	keys := om.Keys()
	units := make([]unit, 0, len(keys))
	for _, k := range keys {
		v, _ := om.Get(k)
		s, ok := v.(string)
		if !ok {
			continue
		}
		units = append(units, unit{key: k, addr: k, text: s})
	}
	return units
}

func parseJSONMap(content string) ([]unit, int, error) {
	om, err := decodeObject(content)
	if err != nil {
		return nil, 0, err
	}
	units := jsonMapUnits(om)
	return units, len(units), nil
}

func extractJSONMap(env Env, in Input) ([]record.Record, error) {
	units, _, err := parseJSONMap(in.Original)
	if err != nil {
		return nil, err
	}
	ref, tr := counterparts(env, in, parseJSONMap)
	return align(env, units, ref, tr), nil
}

// restoreJSONMap sets every edited key on the parsed original. Keys absent
// from the original are still written, after a warning.
func restoreJSONMap(env Env, original string, edited []record.Record) (string, error) {
	om, err := decodeObject(original)
	if err != nil {
		return "", err
	}

	for _, r := range edited {
		if !r.Writable() {
			continue
		}
		current, exists := om.Get(r.Key)
		if !exists {
			env.Log.Warn().Str("key", r.Key).Msg("Extra key in translation, inserted")
		} else if _, isString := current.(string); !isString {
			env.Log.Warn().Str("key", r.Key).Msg("Key holds a non-string value, left untouched")
			continue
		}
		om.Set(r.Key, r.Value())
	}
	return encodeJSON(om, original)
}

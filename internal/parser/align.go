package parser

import (
	"modtrans/internal/record"
)

// unit is one translatable piece of a parsed document.
type unit struct {
	// key is the record key.
	key string
	// addr is what reference and translation copies are aligned on. Units
	// with an empty addr never align and never count as extras.
	addr string
	text string
	// note seeds the record context.
	note string
}

// counterpart is a parsed reference or translation copy.
type counterpart struct {
	units  []unit
	byAddr map[string]string
	// whole is the full text, used once per-unit alignment is demoted.
	whole string
	// size is the positional unit count compared for drift.
	size    int
	demoted bool
}

func newCounterpart(units []unit, whole string, size int) *counterpart {
	cp := &counterpart{units: units, byAddr: make(map[string]string, len(units)), whole: whole, size: size}
	for _, u := range units {
		if u.addr == "" {
			continue
		}
		if _, dup := cp.byAddr[u.addr]; !dup {
			cp.byAddr[u.addr] = u.text
		}
	}
	return cp
}

func (cp *counterpart) lookup(addr string) (string, bool) {
	if cp == nil || cp.demoted || addr == "" {
		return "", false
	}
	v, ok := cp.byAddr[addr]
	return v, ok
}

// counterparts parses the optional copies of in with parse. A copy that does
// not parse is logged and ignored.
func counterparts(env Env, in Input, parse func(string) ([]unit, int, error)) (ref, tr *counterpart) {
	if in.HasReference {
		units, size, err := parse(in.Reference)
		if err != nil {
			env.Log.Warn().Err(err).Msg("Reference copy unreadable, ignored")
		} else {
			ref = newCounterpart(units, in.Reference, size)
		}
	}
	if in.HasTranslation {
		units, size, err := parse(in.Translation)
		if err != nil {
			env.Log.Warn().Err(err).Msg("Translation copy unreadable, ignored")
		} else {
			tr = newCounterpart(units, in.Translation, size)
		}
	}
	return ref, tr
}

// demoteOnDrift disables per-unit alignment of cp when its positional size
// differs from the original's.
func demoteOnDrift(env Env, cp *counterpart, which string, size int) {
	if cp == nil || cp.size == size {
		return
	}
	cp.demoted = true
	env.Log.Warn().
		Int("original", size).
		Int(which, cp.size).
		Msgf("%s length inequal, per-line alignment disabled", which)
}

// align runs the general alignment over original units:
// original-derived records first in document order, then reference-only
// extras, then translation-only extras.
func align(env Env, original []unit, ref, tr *counterpart) []record.Record {
	result := make([]record.Record, 0, len(original))
	seenKey := make(map[string]bool, len(original))
	seenAddr := make(map[string]bool, len(original))

	for _, u := range original {
		if seenKey[u.key] {
			env.Log.Error().Str("key", u.key).Msg("Duplicate key in original, later occurrence dropped")
			continue
		}
		seenKey[u.key] = true
		if u.addr != "" {
			seenAddr[u.addr] = true
		}

		rec := record.Record{Key: u.key, Original: u.text, Context: u.note}
		if ref != nil {
			if ref.demoted {
				rec.Context = ref.whole
			} else if v, ok := ref.lookup(u.addr); ok {
				rec.Context = v
			}
		}
		if v, ok := tr.lookup(u.addr); ok {
			if !(env.ReplaceUntranslated && v == u.text) {
				rec.Translation = v
			}
		}
		result = append(result, rec)
	}

	if ref != nil && !ref.demoted {
		for _, u := range ref.units {
			if u.addr == "" || seenAddr[u.addr] || seenKey[u.key] {
				continue
			}
			seenAddr[u.addr] = true
			seenKey[u.key] = true
			env.Log.Debug().Str("key", u.key).Msg("Reference has new key")

			rec := record.Record{
				Key:      u.key,
				Original: record.Missing,
				Context:  record.AdditionalInReference + "\n" + u.text,
			}
			if v, ok := tr.lookup(u.addr); ok {
				rec.Translation = v
			}
			result = append(result, rec)
		}
	}

	if tr != nil && !tr.demoted {
		for _, u := range tr.units {
			if u.addr == "" || seenAddr[u.addr] || seenKey[u.key] {
				continue
			}
			seenAddr[u.addr] = true
			seenKey[u.key] = true
			env.Log.Debug().Str("key", u.key).Msg("Translation has new key")

			rec := record.Record{
				Key:         u.key,
				Original:    record.Missing,
				Translation: u.text,
				Context:     record.AdditionalInTranslation,
			}
			if v, ok := ref.lookup(u.addr); ok {
				rec.Context += "\n" + v
			}
			result = append(result, rec)
		}
	}

	return result
}

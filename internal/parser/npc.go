package parser

import (
	"modtrans/internal/fields"
	"modtrans/internal/record"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	optionSlotField   = fields.IntField("OptionSlot")
	titleField        = fields.StringField("Title")
	dialogTextField   = fields.StringField("DialogText")
	questTextField    = fields.StringField("Text")
	completeTextField = fields.StringField("CompleteText")
)

const (
	dialogTextKey = "DialogText"
	optionKeyStem = "Options.slot"
	questTitleKey = "Title"
	questTextKey  = "Text"
	completeKey   = "CompleteText"
)

// slot is one addressed field of an export blob. found is false when the
// pattern did not match; its text is then empty.
type slot struct {
	key   string
	field fields.Field
	found bool
}

// locator lists the addressed fields of a blob in record order.
type locator func(content string, log zerolog.Logger) []slot

// locateDialog returns the dialog body followed by one option title per slot.
// Titles pair with slots by occurrence: the Nth Title belongs to the Nth OptionSlot.
func locateDialog(content string, log zerolog.Logger) []slot {
	out := make([]slot, 0, 8)

	body, ok := dialogTextField.Find(content)
	if !ok {
		log.Warn().Str("field", dialogTextKey).Msg("Field not found")
	}
	out = append(out, slot{key: dialogTextKey, field: body, found: ok})

	slots := optionSlotField.FindAll(content)
	titles := titleField.FindAll(content)
	if len(slots) != len(titles) {
		log.Warn().Int("slots", len(slots)).Int("titles", len(titles)).Msg("Option slot and title counts differ")
	}

	seen := make(map[string]bool, len(slots))
	for i := 0; i < len(slots) && i < len(titles); i++ {
		key := optionKeyStem + slots[i].Text
		if seen[key] {
			log.Warn().Str("key", key).Msg("Duplicate option slot, later occurrence ignored")
			continue
		}
		seen[key] = true
		out = append(out, slot{key: key, field: titles[i], found: true})
	}
	return out
}

// locateQuest returns Title when present, then Text and CompleteText.
func locateQuest(content string, log zerolog.Logger) []slot {
	out := make([]slot, 0, 3)
	if title, ok := titleField.Find(content); ok {
		out = append(out, slot{key: questTitleKey, field: title, found: true})
	}
	for _, p := range []struct {
		key     string
		pattern fields.Pattern
	}{
		{questTextKey, questTextField},
		{completeKey, completeTextField},
	} {
		f, ok := p.pattern.Find(content)
		if !ok {
			log.Warn().Str("field", p.key).Msg("Field not found")
		}
		out = append(out, slot{key: p.key, field: f, found: ok})
	}
	return out
}

func slotUnits(slots []slot) []unit {
	units := make([]unit, 0, len(slots))
	for _, s := range slots {
		units = append(units, unit{key: s.key, addr: s.key, text: s.field.Text})
	}
	return units
}

func fieldExtractor(locate locator) ExtractFunc {
	return func(env Env, in Input) ([]record.Record, error) {
		units := slotUnits(locate(in.Original, env.Log))
		ref, tr := counterparts(env, in, func(content string) ([]unit, int, error) {
			units := slotUnits(locate(content, zerolog.Nop()))
			return units, len(units), nil
		})
		return align(env, units, ref, tr), nil
	}
}

// fieldRestorer patches each addressed field in place. Fields without an
// edited record, and records without a located field, leave the document
// untouched.
func fieldRestorer(locate locator) RestoreFunc {
	return func(env Env, original string, edited []record.Record) (string, error) {
		byKey := lo.KeyBy(edited, func(r record.Record) string { return r.Key })
		slots := locate(original, env.Log)

		edits := make([]fields.Edit, 0, len(slots))
		located := make(map[string]bool, len(slots))
		for _, s := range slots {
			located[s.key] = true
			r, ok := byKey[s.key]
			if !ok || !r.Writable() {
				continue
			}
			if !s.found {
				env.Log.Warn().Str("key", s.key).Msg("Field not found, nothing patched")
				continue
			}
			edits = append(edits, fields.Edit{Start: s.field.Start, End: s.field.End, Text: r.Value()})
		}

		for _, r := range edited {
			if !located[r.Key] && r.Writable() {
				env.Log.Warn().Str("key", r.Key).Msg("Record addresses no field, ignored")
			}
		}
		return fields.Apply(original, edits)
	}
}

package dialect

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Canonical describes a family of bilingual language files that share a
// dialect but use a different file name per language.
type Canonical struct {
	Dialect Dialect `toml:"dialect"`
	// Names are the exact file names recognised as this family.
	Names []string `toml:"names"`
	// Reference is the file name looked up in the reference tree.
	Reference string `toml:"reference"`
	// Translation is the file name looked up in the translation tree.
	Translation string `toml:"translation"`
	// Output is the file name written by restoration.
	Output string `toml:"output"`
}

// Markers are lower-case path substrings for special integrations.
type Markers struct {
	Lore        string `toml:"lore"`
	Integration string `toml:"integration"`
	Dialogs     string `toml:"dialogs"`
	Quests      string `toml:"quests"`
	Legacy      string `toml:"legacy"`
	Speech      string `toml:"speech"`
	Names       string `toml:"names"`
}

// Table is the complete, explicit classification configuration.
type Table struct {
	Canonical []Canonical `toml:"canonical"`
	Markers   Markers     `toml:"markers"`
}

// DefaultTable returns the built-in table.
func DefaultTable() Table {
	return Table{
		Canonical: []Canonical{
			{
				Dialect:     KeyValueLines,
				Names:       []string{"en_US.lang", "ru_RU.lang", "zh_CN.lang"},
				Reference:   "en_US.lang",
				Translation: "zh_CN.lang",
				Output:      "zh_CN.lang",
			},
			{
				Dialect:     KeyValueJSON,
				Names:       []string{"en_us.json", "ru_ru.json", "zh_cn.json"},
				Reference:   "en_us.json",
				Translation: "zh_cn.json",
				Output:      "zh_cn.json",
			},
		},
		Markers: Markers{
			Lore:        "lore",
			Integration: "customnpcs",
			Dialogs:     "dialogs",
			Quests:      "quests",
			Legacy:      "lotr",
			Speech:      "speech",
			Names:       "names",
		},
	}
}

// LoadTable reads a TOML table file. Missing marker values fall back to the
// built-in ones; a file without canonical entries keeps the built-in list.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read dialect table: %w", err)
	}

	var t Table
	if _, err := toml.Decode(string(raw), &t); err != nil {
		return Table{}, fmt.Errorf("decode dialect table: %w", err)
	}

	def := DefaultTable()
	if len(t.Canonical) == 0 {
		t.Canonical = def.Canonical
	}
	fill := func(v *string, fallback string) {
		if *v == "" {
			*v = fallback
		}
	}
	fill(&t.Markers.Lore, def.Markers.Lore)
	fill(&t.Markers.Integration, def.Markers.Integration)
	fill(&t.Markers.Dialogs, def.Markers.Dialogs)
	fill(&t.Markers.Quests, def.Markers.Quests)
	fill(&t.Markers.Legacy, def.Markers.Legacy)
	fill(&t.Markers.Speech, def.Markers.Speech)
	fill(&t.Markers.Names, def.Markers.Names)

	for i, c := range t.Canonical {
		if c.Dialect != KeyValueLines && c.Dialect != KeyValueJSON {
			return Table{}, fmt.Errorf("canonical entry %d: dialect %s cannot be canonical", i, c.Dialect)
		}
		if len(c.Names) == 0 {
			return Table{}, fmt.Errorf("canonical entry %d: no names", i)
		}
	}
	return t, nil
}

// Lookup returns the canonical entry whose Names contain name.
func (t Table) Lookup(name string) (Canonical, bool) {
	for _, c := range t.Canonical {
		for _, n := range c.Names {
			if n == name {
				return c, true
			}
		}
	}
	return Canonical{}, false
}

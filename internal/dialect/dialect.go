// Package dialect names the document grammars understood by the engine and
// maps relative asset paths onto them.
package dialect

import "fmt"

// Dialect is a closed set of document grammars.
type Dialect int

const (
	Unknown Dialect = iota
	KeyValueLines
	KeyValueJSON
	WholeFileBlob
	PlaintextLines
	DialogFields
	QuestFields
	SpeechBank
	NameList
)

var names = map[Dialect]string{
	Unknown:        "unknown",
	KeyValueLines:  "key-value-lines",
	KeyValueJSON:   "key-value-json",
	WholeFileBlob:  "whole-file-blob",
	PlaintextLines: "plaintext-lines",
	DialogFields:   "dialog-fields",
	QuestFields:    "quest-fields",
	SpeechBank:     "speech-bank",
	NameList:       "name-list",
}

func (d Dialect) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// Parse resolves a dialect from its String form.
func Parse(s string) (Dialect, error) {
	for d, n := range names {
		if n == s && d != Unknown {
			return d, nil
		}
	}
	return Unknown, fmt.Errorf("parse dialect %q: %w", s, ErrUnknownDialect)
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so table files can name dialects.
func (d *Dialect) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

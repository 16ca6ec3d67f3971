// Package record defines the flat key/value unit exchanged with the
// translation platform and its JSON file representation.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Missing marks a record whose key only exists in a reference or translation copy.
const Missing = "MISSING"

// Provenance notes placed in Context for extra-key records.
const (
	AdditionalInReference   = "Additional in reference"
	AdditionalInTranslation = "Additional in translation"
)

// Record is one translatable unit.
type Record struct {
	Key         string `json:"key"`
	Original    string `json:"original"`
	Translation string `json:"translation"`
	Context     string `json:"context"`
}

// Value returns the translation when present, otherwise the original text.
// Every restoration goes through this rule.
func (r Record) Value() string {
	if r.Translation != "" {
		return r.Translation
	}
	return r.Original
}

// IsExtra reports whether the record was discovered only in a reference or
// translation copy.
func (r Record) IsExtra() bool {
	return r.Original == Missing
}

// Writable reports whether restoration should emit the record. Extra-key
// records that nobody translated would otherwise leak the sentinel.
func (r Record) Writable() bool {
	return !r.IsExtra() || r.Translation != ""
}

// Encode writes records as an indented JSON array without HTML escaping.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// Decode reads a JSON array of records. Unknown fields added by the platform
// are ignored.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// WriteFile encodes records to path, creating parent directories.
// It returns the number of bytes written.
func WriteFile(path string, records []Record) (int, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create record directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("write record file: %w", err)
	}
	return buf.Len(), nil
}

// ReadFile decodes the record file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

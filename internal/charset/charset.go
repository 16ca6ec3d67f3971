// Package charset guarantees UTF-8 text for the extraction engine. Source
// files in other encodings are decoded in memory; nothing is written back.
package charset

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrLowConfidence is returned when no candidate encoding decodes the input
// convincingly.
var ErrLowConfidence = errors.New("encoding confidence below threshold")

// UTF8 is the encoding name reported for input that needed no repair.
const UTF8 = "utf-8"

// Decoded is repaired text and how it was obtained.
type Decoded struct {
	Text       string
	Encoding   string
	Confidence float64
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Detector decodes raw bytes with a fixed list of fallback encodings.
type Detector struct {
	fallbacks []candidate
	threshold float64
}

// New creates a detector trying names, in order, on input that is not valid
// UTF-8. Names are WHATWG encoding labels such as "gb18030" or "windows-1251".
func New(names []string, threshold float64) (*Detector, error) {
	d := &Detector{threshold: threshold}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("fallback encoding %q: %w", name, err)
		}
		d.fallbacks = append(d.fallbacks, candidate{name: name, enc: enc})
	}
	return d, nil
}

// Decode returns raw as UTF-8 text with any byte order mark removed.
func (d *Detector) Decode(raw []byte) (Decoded, error) {
	unmarked, _, err := transform.Bytes(xunicode.BOMOverride(encoding.Nop.NewDecoder()), raw)
	if err != nil {
		return Decoded{}, fmt.Errorf("strip byte order mark: %w", err)
	}
	if utf8.Valid(unmarked) {
		return Decoded{Text: string(unmarked), Encoding: UTF8, Confidence: 1}, nil
	}

	best := Decoded{}
	for _, c := range d.fallbacks {
		out, err := c.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		text := string(out)
		score := Score(text)
		if score >= d.threshold {
			return Decoded{Text: text, Encoding: c.name, Confidence: score}, nil
		}
		if score > best.Confidence {
			best = Decoded{Encoding: c.name, Confidence: score}
		}
	}
	if best.Encoding == "" {
		return Decoded{}, ErrLowConfidence
	}
	return best, fmt.Errorf("best guess %s at %.2f: %w", best.Encoding, best.Confidence, ErrLowConfidence)
}

// ReadFile reads and decodes the file at path.
func (d *Detector) ReadFile(path string) (Decoded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("read %s: %w", path, err)
	}
	dec, err := d.Decode(raw)
	if err != nil {
		return dec, fmt.Errorf("decode %s: %w", path, err)
	}
	return dec, nil
}

// Score is the share of runes in text that are neither replacement
// characters nor control characters other than common whitespace.
func Score(text string) float64 {
	total, good := 0, 0
	for _, r := range text {
		total++
		switch {
		case r == utf8.RuneError:
		case r == '\n' || r == '\r' || r == '\t':
			good++
		case unicode.IsControl(r):
		default:
			good++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(good) / float64(total)
}

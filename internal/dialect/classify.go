package dialect

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnknownDialect is returned when no classification rule matches a path.
var ErrUnknownDialect = errors.New("unknown dialect")

// Classifier maps relative asset paths onto dialects.
type Classifier struct {
	table Table
	log   zerolog.Logger
}

// NewClassifier creates a classifier over the given table.
func NewClassifier(table Table, logger zerolog.Logger) *Classifier {
	return &Classifier{table: table, log: logger}
}

// Classify resolves the dialect of relPath. Rules, first match wins:
//  1. exact canonical file name
//  2. ".lang" suffix
//  3. integration path markers (dialog and quest exports, legacy speech and names)
//  4. ".txt" suffix: whole-file blob inside a lore path, positional lines otherwise
//
// Integration markers are consulted before the generic text rule so that
// legacy ".txt" speech and name lists keep their own grammar.
func (c *Classifier) Classify(relPath string) (Dialect, bool) {
	d := c.classify(relPath)
	if d == Unknown {
		c.log.Debug().Str("file", relPath).Msg("No dialect matched")
		return Unknown, false
	}
	c.log.Debug().Str("file", relPath).Stringer("dialect", d).Msg("Classified")
	return d, true
}

// Require is Classify for callers that cannot continue without a dialect.
func (c *Classifier) Require(relPath string) (Dialect, error) {
	d, ok := c.Classify(relPath)
	if !ok {
		return Unknown, fmt.Errorf("classify %s: %w", relPath, ErrUnknownDialect)
	}
	return d, nil
}

func (c *Classifier) classify(relPath string) Dialect {
	slashed := filepath.ToSlash(relPath)
	name := path.Base(slashed)
	lower := strings.ToLower(slashed)
	suffix := strings.ToLower(path.Ext(name))
	m := c.table.Markers

	if canon, ok := c.table.Lookup(name); ok {
		return canon.Dialect
	}

	if suffix == ".lang" {
		return KeyValueLines
	}

	if strings.Contains(lower, m.Integration) {
		if strings.Contains(lower, m.Dialogs) {
			return DialogFields
		}
		if strings.Contains(lower, m.Quests) {
			return QuestFields
		}
	}

	if strings.Contains(lower, m.Legacy) {
		if strings.Contains(lower, m.Speech) {
			switch suffix {
			case ".json":
				return SpeechBank
			case ".txt":
				return NameList
			}
		}
		if strings.Contains(lower, m.Names) && suffix == ".txt" {
			return NameList
		}
	}

	if suffix == ".txt" {
		if strings.Contains(lower, m.Lore) {
			return WholeFileBlob
		}
		return PlaintextLines
	}

	return Unknown
}

// Companion returns the relative path of the reference or translation copy of
// relPath. Canonical files are looked up under the configured companion name
// in the mirrored directory; everything else mirrors the path unchanged.
func (c *Classifier) Companion(relPath string, translation bool) string {
	canon, ok := c.table.Lookup(filepath.Base(relPath))
	if !ok {
		return relPath
	}
	name := canon.Reference
	if translation {
		name = canon.Translation
	}
	if name == "" {
		return relPath
	}
	return filepath.Join(filepath.Dir(relPath), name)
}

// OutputPath returns the relative path restoration writes for relPath.
func (c *Classifier) OutputPath(relPath string) string {
	canon, ok := c.table.Lookup(filepath.Base(relPath))
	if !ok || canon.Output == "" {
		return relPath
	}
	return filepath.Join(filepath.Dir(relPath), canon.Output)
}

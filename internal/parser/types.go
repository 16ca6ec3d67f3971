package parser

import (
	"errors"
	"fmt"

	"modtrans/internal/dialect"
	"modtrans/internal/record"

	"github.com/rs/zerolog"
)

// ErrNoGrammar is returned for a dialect with no registered grammar.
var ErrNoGrammar = errors.New("no grammar for dialect")

// ErrMalformed is returned when an original document cannot be read under its dialect.
var ErrMalformed = errors.New("malformed document")

// Input is the document triple for one asset. Reference and Translation are
// only consulted when the matching Has flag is set.
type Input struct {
	// Path is the asset path relative to the original tree.
	Path string

	Original string

	Reference    string
	HasReference bool

	Translation    string
	HasTranslation bool
}

// Env is what a grammar may depend on besides its input.
type Env struct {
	Path string
	Log  zerolog.Logger
	// ReplaceUntranslated drops seeded translations identical to the original.
	ReplaceUntranslated bool
}

// ExtractFunc turns a document triple into records.
type ExtractFunc func(env Env, in Input) ([]record.Record, error)

// RestoreFunc rebuilds the original document with edited records applied.
type RestoreFunc func(env Env, original string, edited []record.Record) (string, error)

// Descriptor is the grammar registered for one dialect.
type Descriptor struct {
	Dialect             dialect.Dialect
	ReplaceUntranslated bool
	Extract             ExtractFunc
	Restore             RestoreFunc
}

// Engine dispatches extraction and restoration to per-dialect grammars.
type Engine struct {
	log      zerolog.Logger
	grammars map[dialect.Dialect]Descriptor
}

// New creates an engine with every built-in grammar.
func New(logger zerolog.Logger) *Engine {
	e := &Engine{log: logger, grammars: make(map[dialect.Dialect]Descriptor)}
	for _, d := range builtin() {
		e.Register(d)
	}
	return e
}

// Register adds or replaces the grammar for d.Dialect.
func (e *Engine) Register(d Descriptor) {
	e.grammars[d.Dialect] = d
}

func (e *Engine) env(desc Descriptor, path string) Env {
	return Env{
		Path:                path,
		Log:                 e.log.With().Str("file", path).Stringer("dialect", desc.Dialect).Logger(),
		ReplaceUntranslated: desc.ReplaceUntranslated,
	}
}

// Extract produces the ordered, uniquely keyed records of in. An empty
// original yields no records.
func (e *Engine) Extract(d dialect.Dialect, in Input) ([]record.Record, error) {
	desc, ok := e.grammars[d]
	if !ok {
		return nil, fmt.Errorf("extract %s: %w", d, ErrNoGrammar)
	}
	if in.Original == "" {
		return nil, nil
	}
	recs, err := desc.Extract(e.env(desc, in.Path), in)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", d, err)
	}
	return recs, nil
}

// Restore rebuilds original with edited applied.
func (e *Engine) Restore(d dialect.Dialect, path, original string, edited []record.Record) (string, error) {
	desc, ok := e.grammars[d]
	if !ok {
		return "", fmt.Errorf("restore %s: %w", d, ErrNoGrammar)
	}
	out, err := desc.Restore(e.env(desc, path), original, edited)
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", d, err)
	}
	return out, nil
}

func builtin() []Descriptor {
	return []Descriptor{
		{Dialect: dialect.KeyValueLines, Extract: extractLang, Restore: restoreLang},
		{Dialect: dialect.KeyValueJSON, Extract: extractJSONMap, Restore: restoreJSONMap},
		{Dialect: dialect.WholeFileBlob, ReplaceUntranslated: true, Extract: extractBlob, Restore: restoreBlob},
		{Dialect: dialect.PlaintextLines, Extract: extractPlaintext, Restore: restorePlaintext},
		{Dialect: dialect.NameList, ReplaceUntranslated: true, Extract: extractNameList, Restore: restoreNameList},
		{Dialect: dialect.DialogFields, Extract: fieldExtractor(locateDialog), Restore: fieldRestorer(locateDialog)},
		{Dialect: dialect.QuestFields, Extract: fieldExtractor(locateQuest), Restore: fieldRestorer(locateQuest)},
		{Dialect: dialect.SpeechBank, Extract: extractSpeech, Restore: restoreSpeech},
	}
}

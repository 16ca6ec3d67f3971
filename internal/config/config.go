package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"modtrans/internal/dialect"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source tree subdirectories.
const (
	OriginalDir    = "original"
	ReferenceDir   = "reference"
	TranslationDir = "translation"
)

type Config struct {
	ProjectRoot   string
	SourceDir     string
	ConvertedDir  string
	DownloadedDir string
	ResultDir     string

	LogLevel zerolog.Level

	FallbackEncodings  []string
	EncodingConfidence float64

	WorkerCount int
	BatchSize   int

	DatabaseURL string
	// DialectTable is the path of the TOML table; empty uses the built-in one.
	DialectTable string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	root := getEnv("PROJECT_ROOT", ".")
	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		ProjectRoot:        root,
		SourceDir:          inRoot(root, getEnv("PATH_SOURCE", "resource/1-SourceFile")),
		ConvertedDir:       inRoot(root, getEnv("PATH_CONVERTED", "resource/2-ConvertedParatranzFile")),
		DownloadedDir:      inRoot(root, getEnv("PATH_DOWNLOAD", "resource/3-TranslatedParatranzFile")),
		ResultDir:          inRoot(root, getEnv("PATH_RESULT", "resource/4-SourceTranslatedFile")),
		LogLevel:           level,
		FallbackEncodings:  getEnvList("FALLBACK_ENCODINGS", []string{"gb18030", "windows-1251", "shift_jis"}),
		EncodingConfidence: getEnvFloat("ENCODING_CONFIDENCE", 0.9),
		WorkerCount:        getEnvInt("WORKER_COUNT", 1),
		BatchSize:          getEnvInt("BATCH_SIZE", 500),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DialectTable:       getEnv("DIALECT_TABLE", ""),
	}
	if cfg.EncodingConfidence <= 0 || cfg.EncodingConfidence > 1 {
		return nil, fmt.Errorf("ENCODING_CONFIDENCE must be in (0, 1], got %v", cfg.EncodingConfidence)
	}
	return cfg, nil
}

// OriginalRoot is the tree of files to translate.
func (c *Config) OriginalRoot() string { return filepath.Join(c.SourceDir, OriginalDir) }

// ReferenceRoot mirrors OriginalRoot with an intermediate-language copy.
func (c *Config) ReferenceRoot() string { return filepath.Join(c.SourceDir, ReferenceDir) }

// TranslationRoot mirrors OriginalRoot with an earlier translation.
func (c *Config) TranslationRoot() string { return filepath.Join(c.SourceDir, TranslationDir) }

// Table returns the dialect table, loading DialectTable when set.
func (c *Config) Table() (dialect.Table, error) {
	if c.DialectTable == "" {
		return dialect.DefaultTable(), nil
	}
	return dialect.LoadTable(c.DialectTable)
}

func inRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

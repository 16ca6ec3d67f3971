package pipeline

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"modtrans/internal/charset"
	"modtrans/internal/config"
	"modtrans/internal/dialect"
	"modtrans/internal/memory"
	"modtrans/internal/parser"
	"modtrans/internal/record"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		ProjectRoot:        root,
		SourceDir:          filepath.Join(root, "source"),
		ConvertedDir:       filepath.Join(root, "converted"),
		DownloadedDir:      filepath.Join(root, "download"),
		ResultDir:          filepath.Join(root, "result"),
		FallbackEncodings:  []string{"gb18030"},
		EncodingConfidence: 0.9,
		WorkerCount:        1,
		BatchSize:          10,
	}
}

func newPipeline(t *testing.T, cfg *config.Config, store memory.Store) *Pipeline {
	t.Helper()
	det, err := charset.New(cfg.FallbackEncodings, cfg.EncodingConfidence)
	require.NoError(t, err)
	classifier := dialect.NewClassifier(dialect.DefaultTable(), zerolog.Nop())
	return New(cfg, classifier, parser.New(zerolog.Nop()), det, store, zerolog.Nop())
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func copyTree(t *testing.T, src, dst string) {
	t.Helper()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		writeFile(t, filepath.Join(dst, rel), b)
		return nil
	})
	require.NoError(t, err)
}

func seedProject(t *testing.T, cfg *config.Config) {
	t.Helper()
	gb, err := simplifiedchinese.GB18030.NewEncoder().String("名字=甘道夫\n")
	require.NoError(t, err)

	writeFile(t, filepath.Join(cfg.OriginalRoot(), "mod", "lang", "en_US.lang"), []byte("a=Apple\nb=Banana\n"))
	writeFile(t, filepath.Join(cfg.ReferenceRoot(), "mod", "lang", "en_US.lang"), []byte("a=Apfel\nb=Banane\n"))
	writeFile(t, filepath.Join(cfg.TranslationRoot(), "mod", "lang", "zh_CN.lang"), []byte("a=苹果\n"))
	writeFile(t, filepath.Join(cfg.OriginalRoot(), "LOTR", "lore", "gandalf.txt"), []byte("A wizard is never late."))
	writeFile(t, filepath.Join(cfg.OriginalRoot(), "mod", "notes.txt"), []byte(gb))
	writeFile(t, filepath.Join(cfg.OriginalRoot(), "mod", "empty.txt"), nil)
	writeFile(t, filepath.Join(cfg.OriginalRoot(), "mod", "logo.png"), []byte("\x89PNG"))
}

func TestConvertAndRestore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	seedProject(t, cfg)
	store := memory.New()
	p := newPipeline(t, cfg, store)

	stale := filepath.Join(cfg.ConvertedDir, "stale.json")
	writeFile(t, stale, []byte("[]"))

	sum, err := p.Convert(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 1, sum.Empty)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Failed)
	assert.Positive(t, sum.Bytes)
	assert.NoFileExists(t, stale)
	assert.NoFileExists(t, filepath.Join(cfg.ConvertedDir, "mod", "empty.txt.json"))

	langJSON := filepath.Join(cfg.ConvertedDir, "mod", "lang", "en_US.lang.json")
	recs, err := record.ReadFile(langJSON)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Key: "a", Original: "Apple", Translation: "苹果", Context: "Apfel"},
		{Key: "b", Original: "Banana", Context: "Banane"},
	}, recs)

	notes, err := record.ReadFile(filepath.Join(cfg.ConvertedDir, "mod", "notes.txt.json"))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "名字=甘道夫", notes[0].Original)

	// Translate b on the platform side.
	copyTree(t, cfg.ConvertedDir, cfg.DownloadedDir)
	recs[1].Translation = "香蕉"
	_, err = record.WriteFile(filepath.Join(cfg.DownloadedDir, "mod", "lang", "en_US.lang.json"), recs)
	require.NoError(t, err)
	writeFile(t, filepath.Join(cfg.DownloadedDir, "mod", "readme.md"), []byte("notes"))

	sum, err = p.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Failed)

	assert.Equal(t, "a=苹果\nb=香蕉\n", readFile(t, filepath.Join(cfg.ResultDir, "mod", "lang", "zh_CN.lang")))
	assert.NoFileExists(t, filepath.Join(cfg.ResultDir, "mod", "lang", "en_US.lang"))
	assert.Equal(t, "A wizard is never late.", readFile(t, filepath.Join(cfg.ResultDir, "LOTR", "lore", "gandalf.txt")))
	assert.Equal(t, "名字=甘道夫\n", readFile(t, filepath.Join(cfg.ResultDir, "mod", "notes.txt")))

	v, ok := store.Lookup(ctx, "Banana")
	require.True(t, ok)
	assert.Equal(t, "香蕉", v)

	// A later extraction suggests the remembered translation.
	require.NoError(t, os.Remove(filepath.Join(cfg.TranslationRoot(), "mod", "lang", "zh_CN.lang")))
	_, err = p.Convert(ctx)
	require.NoError(t, err)
	recs, err = record.ReadFile(langJSON)
	require.NoError(t, err)
	assert.Equal(t, "Banane\n"+memory.ContextPrefix+"香蕉", recs[1].Context)
}

func TestRestoreReportsFailuresAndPlaceholders(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.OriginalRoot(), "mod", "lang", "en_US.lang"), []byte("hit=%s hits %s\n"))

	_, err := record.WriteFile(filepath.Join(cfg.DownloadedDir, "mod", "lang", "en_US.lang.json"), []record.Record{
		{Key: "hit", Original: "%s hits %s", Translation: "%s 击中"},
	})
	require.NoError(t, err)
	_, err = record.WriteFile(filepath.Join(cfg.DownloadedDir, "mod", "ghost.txt.json"), []record.Record{
		{Key: "0", Original: "boo"},
	})
	require.NoError(t, err)

	sum, err := newPipeline(t, cfg, nil).Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Placeholders)
	require.Error(t, sum.Err)
	assert.Contains(t, sum.Err.Error(), "ghost.txt")

	var out bytes.Buffer
	sum.Print(&out)
	assert.Contains(t, out.String(), "files processed")
	assert.Contains(t, out.String(), "ghost.txt")
}

func TestMissingProjectStructure(t *testing.T) {
	cfg := testConfig(t)
	p := newPipeline(t, cfg, nil)

	_, err := p.Convert(context.Background())
	require.ErrorIs(t, err, ErrProjectStructure)

	_, err = p.Restore(context.Background())
	require.ErrorIs(t, err, ErrProjectStructure)
}

func TestConvertCancelled(t *testing.T) {
	cfg := testConfig(t)
	seedProject(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := newPipeline(t, cfg, nil).Convert(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Processed)
}

func TestGroupOf(t *testing.T) {
	assert.Equal(t, rootGroup, groupOf("a.txt"))
	assert.Equal(t, "mod", groupOf(filepath.FromSlash("mod/a.txt")))
	assert.Equal(t, "a-b-c", groupOf(filepath.FromSlash("a/b/c/d/e.txt")))
}

package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"modtrans/internal/dialect"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newWalker() *Walker {
	return NewWalker(dialect.NewClassifier(dialect.DefaultTable(), zerolog.Nop()), zerolog.Nop())
}

func TestWalkClassifiesInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "modB/lang/en_US.lang", "a=1\n")
	writeFile(t, root, "modA/assets/lang/en_us.json", "{}")
	writeFile(t, root, "modA/readme.txt", "hi\n")
	writeFile(t, root, "modA/logo.png", "\x89PNG")
	writeFile(t, root, "config/customnpcs/dialogs/default/1.json", "{}")

	entries, skipped, err := newWalker().Walk(root)
	require.NoError(t, err)

	var rels []string
	for _, e := range entries {
		rels = append(rels, filepath.ToSlash(e.Rel))
		assert.True(t, filepath.IsAbs(e.Path))
	}
	assert.Equal(t, []string{
		"config/customnpcs/dialogs/default/1.json",
		"modA/assets/lang/en_us.json",
		"modA/readme.txt",
		"modB/lang/en_US.lang",
	}, rels)
	assert.Equal(t, dialect.DialogFields, entries[0].Dialect)
	assert.Equal(t, dialect.KeyValueJSON, entries[1].Dialect)
	assert.Equal(t, dialect.PlaintextLines, entries[2].Dialect)
	assert.Equal(t, dialect.KeyValueLines, entries[3].Dialect)
	assert.Equal(t, []string{filepath.FromSlash("modA/logo.png")}, skipped)
}

func TestWalkRejectsMissingRoot(t *testing.T) {
	_, _, err := newWalker().Walk(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = newWalker().Files(file)
	require.Error(t, err)
}

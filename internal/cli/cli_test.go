package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"modtrans/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("DIALECT_TABLE", "")
	t.Setenv("LOG_LEVEL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", filepath.FromSlash("mod/lang/en_US.lang"))
	require.NoError(t, err)
	assert.Equal(t, "key-value-lines\t"+filepath.FromSlash("mod/lang/zh_CN.lang")+"\n", out)

	_, err = execute(t, "classify", "logo.png")
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestConvertWithoutProject(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "convert")
	require.Error(t, err)
}

func TestRunPasses(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PROJECT_ROOT", root)
	t.Setenv("DATABASE_URL", "")
	orig := filepath.Join(root, "resource", "1-SourceFile", "original", "mod", "lang", "en_US.lang")
	require.NoError(t, os.MkdirAll(filepath.Dir(orig), 0755))
	require.NoError(t, os.WriteFile(orig, []byte("a=Apple\n"), 0644))

	out, err := execute(t, "convert")
	require.NoError(t, err)
	assert.Contains(t, out, "convert:")
	assert.FileExists(t, filepath.Join(root, "resource", "2-ConvertedParatranzFile", "mod", "lang", "en_US.lang.json"))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

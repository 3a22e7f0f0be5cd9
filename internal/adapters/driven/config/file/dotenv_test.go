package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DOCINTEL_TEST_DOTENV=from-file\nDOCINTEL_TEST_PRESET=from-file\n"), 0600))
	t.Setenv("DOCINTEL_TEST_PRESET", "from-env")
	t.Setenv("DOCINTEL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("DOCINTEL_TEST_DOTENV"))

	loaded, err := LoadDotEnv(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "from-file", os.Getenv("DOCINTEL_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("DOCINTEL_TEST_PRESET"))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := LoadDotEnv(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("'unterminated\n"), 0600))

	_, err := LoadDotEnv(dir)

	assert.Error(t, err)
}

package searchpath

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/stager/internal/testutil"
)

func TestParse(t *testing.T) {
	tmpDir := t.TempDir()
	libDir := filepath.Join(tmpDir, "lib")
	zipPath := filepath.Join(tmpDir, "deps.zip")
	notZip := filepath.Join(tmpDir, "notes.txt")

	testutil.WriteTree(t, tmpDir, map[string]string{"lib/": "", "notes.txt": "hello"})
	testutil.WriteZip(t, zipPath, map[string]string{"six.py": "", "inner/pkg/__init__.py": ""})

	path := Parse([]string{
		libDir,
		zipPath,
		filepath.Join(zipPath, "inner"),
		notZip,
		filepath.Join(tmpDir, "missing"),
		"",
	})
	require.Len(t, path, 6)

	t.Run("directory entry", func(t *testing.T) {
		assert.False(t, path[0].IsArchive())
		assert.Equal(t, libDir, path[0].Path)
	})

	t.Run("archive entry", func(t *testing.T) {
		assert.True(t, path[1].IsArchive())
		assert.Equal(t, zipPath, path[1].Archive)
		assert.Empty(t, path[1].Prefix)
	})

	t.Run("archive entry with inner prefix", func(t *testing.T) {
		assert.True(t, path[2].IsArchive())
		assert.Equal(t, zipPath, path[2].Archive)
		assert.Equal(t, "inner", path[2].Prefix)
	})

	t.Run("plain file is not an archive", func(t *testing.T) {
		assert.False(t, path[3].IsArchive())
	})

	t.Run("missing entry is kept", func(t *testing.T) {
		assert.False(t, path[4].IsArchive())
		assert.Equal(t, filepath.Join(tmpDir, "missing"), path[4].Path)
	})

	t.Run("empty entry is current directory", func(t *testing.T) {
		assert.Equal(t, "", path[5].Path)
		assert.False(t, path[5].IsArchive())
	})

	assert.Equal(t, []string{libDir, zipPath, filepath.Join(zipPath, "inner"), notZip, filepath.Join(tmpDir, "missing"), ""}, path.Strings())
}

func TestFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a")
	b := filepath.Join(tmpDir, "b")
	t.Setenv(EnvVar, a+string(os.PathListSeparator)+string(os.PathListSeparator)+b)

	path := FromEnv()
	assert.Equal(t, []string{"", a, b}, path.Strings())
}

func TestFromEnvUnset(t *testing.T) {
	t.Setenv(EnvVar, "")
	assert.Equal(t, []string{""}, FromEnv().Strings())
}

func TestFromInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as a fake interpreter")
	}

	tmpDir := t.TempDir()
	site := filepath.Join(tmpDir, "site-packages")
	require.NoError(t, os.MkdirAll(site, 0o755))

	fake := filepath.Join(tmpDir, "python")
	script := "#!/bin/sh\necho '[\"\", \"" + site + "\", \"" + site + "\"]'\n"
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))

	path, err := FromInterpreter(context.Background(), fake)
	require.NoError(t, err)
	assert.Equal(t, []string{"", site}, path.Strings())
}

func TestFromInterpreterFailure(t *testing.T) {
	_, err := FromInterpreter(context.Background(), filepath.Join(t.TempDir(), "no-such-python"))
	assert.Error(t, err)
}

func TestDecodePathList(t *testing.T) {
	raw, err := decodePathList([]byte("[\"\", \"/usr/lib/python38.zip\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"", "/usr/lib/python38.zip"}, raw)

	_, err = decodePathList([]byte("not json"))
	assert.Error(t, err)
}

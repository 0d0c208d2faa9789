package loader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/stager/internal/errors"
	"github.com/opmodel/stager/internal/searchpath"
	"github.com/opmodel/stager/internal/testutil"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultConventions())
}

func TestResolveKinds(t *testing.T) {
	site := t.TempDir()
	testutil.WriteTree(t, site, map[string]string{
		"requests/__init__.py":                      "",
		"requests/api.py":                           "",
		"six.py":                                    "",
		"_speedups.cp38-win_amd64.pyd":              "MZ",
		"ujson.pyd":                                 "MZ",
		"legacy.pyc":                                "",
		"nspkg/portion.py":                          "",
		"nspkg.py":                                  "",
		"numpy/__init__.py":                         "",
		"numpy/core/_multiarray.cp38-win_amd64.pyd": "MZ",
	})
	path := searchpath.Parse([]string{site})
	c := newTestClassifier()

	tests := []struct {
		name     string
		module   string
		wantKind Kind
		wantPath string
	}{
		{"package directory", "requests", PackageDirectory, filepath.Join(site, "requests")},
		{"package with nested binaries", "numpy", PackageDirectory, filepath.Join(site, "numpy")},
		{"source file", "six", SourceFile, filepath.Join(site, "six.py")},
		{"tagged extension", "_speedups", ExtensionBinary, filepath.Join(site, "_speedups.cp38-win_amd64.pyd")},
		{"untagged extension", "ujson", ExtensionBinary, filepath.Join(site, "ujson.pyd")},
		{"bytecode-only module", "legacy", SourceFile, filepath.Join(site, "legacy.pyc")},
		{"namespace directory falls through to file", "nspkg", SourceFile, filepath.Join(site, "nspkg.py")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := c.Resolve(tt.module, path)
			require.NoError(t, err)
			assert.Equal(t, tt.module, mod.Name)
			assert.Equal(t, tt.wantKind, mod.Kind)
			assert.Equal(t, tt.wantPath, mod.Path)
			assert.Equal(t, site, mod.Entry)
			assert.Nil(t, mod.Archive)
		})
	}
}

func TestResolvePackageBeatsExtensionAndSource(t *testing.T) {
	site := t.TempDir()
	testutil.WriteTree(t, site, map[string]string{
		"dual/__init__.py": "",
		"dual.py":          "",
		"dual.so":          "",
		"bin.so":           "",
		"bin.py":           "",
	})
	c := newTestClassifier()
	path := searchpath.Parse([]string{site})

	mod, err := c.Resolve("dual", path)
	require.NoError(t, err)
	assert.Equal(t, PackageDirectory, mod.Kind)

	mod, err = c.Resolve("bin", path)
	require.NoError(t, err)
	assert.Equal(t, ExtensionBinary, mod.Kind)
}

func TestResolveBytecodeOnlyDirectoryIsNotPackage(t *testing.T) {
	tmpDir := t.TempDir()
	frozen := filepath.Join(tmpDir, "frozen-site")
	plain := filepath.Join(tmpDir, "site")
	testutil.WriteTree(t, frozen, map[string]string{
		"frozen/__init__.pyc": "",
		"frozen/core.pyc":     "",
	})
	testutil.WriteTree(t, plain, map[string]string{"frozen.py": ""})
	zipPath := filepath.Join(tmpDir, "frozen.zip")
	testutil.WriteZip(t, zipPath, map[string]string{
		"frozen/__init__.pyc": "",
		"frozen/core.pyc":     "",
	})
	c := newTestClassifier()

	_, err := c.Resolve("frozen", searchpath.Parse([]string{frozen}))
	assert.True(t, errors.Is(err, oerrors.ErrNotFound), "got %v", err)

	_, err = c.Resolve("frozen", searchpath.Parse([]string{zipPath}))
	assert.True(t, errors.Is(err, oerrors.ErrNotFound), "got %v", err)

	mod, err := c.Resolve("frozen", searchpath.Parse([]string{frozen, zipPath, plain}))
	require.NoError(t, err)
	assert.Equal(t, SourceFile, mod.Kind)
	assert.Equal(t, filepath.Join(plain, "frozen.py"), mod.Path)
}

func TestResolveArchive(t *testing.T) {
	tmpDir := t.TempDir()
	zipPath := filepath.Join(tmpDir, "deps.zip")
	testutil.WriteZip(t, zipPath, map[string]string{
		"attr/__init__.py":      "",
		"attr/_make.py":         "",
		"toml.py":               "",
		"lib/inner/__init__.py": "",
		"compiled.pyc":          "",
	})
	c := newTestClassifier()

	t.Run("archived package", func(t *testing.T) {
		mod, err := c.Resolve("attr", searchpath.Parse([]string{zipPath}))
		require.NoError(t, err)
		assert.Equal(t, ArchivedEntry, mod.Kind)
		require.NotNil(t, mod.Archive)
		assert.Equal(t, zipPath, mod.Archive.Archive)
		assert.Equal(t, "attr", mod.Archive.Member)
		assert.True(t, mod.Archive.IsPackage)
		assert.True(t, mod.IsPackage())
	})

	t.Run("archived module", func(t *testing.T) {
		mod, err := c.Resolve("toml", searchpath.Parse([]string{zipPath}))
		require.NoError(t, err)
		assert.Equal(t, ArchivedEntry, mod.Kind)
		assert.Equal(t, "toml.py", mod.Archive.Member)
		assert.False(t, mod.IsPackage())
		assert.Equal(t, zipPath+"/toml.py", mod.Location())
	})

	t.Run("archived bytecode module", func(t *testing.T) {
		mod, err := c.Resolve("compiled", searchpath.Parse([]string{zipPath}))
		require.NoError(t, err)
		assert.Equal(t, "compiled.pyc", mod.Archive.Member)
	})

	t.Run("archive with inner prefix", func(t *testing.T) {
		mod, err := c.Resolve("inner", searchpath.Parse([]string{filepath.Join(zipPath, "lib")}))
		require.NoError(t, err)
		assert.Equal(t, "lib/inner", mod.Archive.Member)
		assert.Equal(t, "lib", mod.Archive.Prefix)
		assert.True(t, mod.Archive.IsPackage)
	})

	t.Run("prefix hides root members", func(t *testing.T) {
		_, err := c.Resolve("toml", searchpath.Parse([]string{filepath.Join(zipPath, "lib")}))
		assert.True(t, errors.Is(err, oerrors.ErrNotFound))
	})
}

func TestResolveOrder(t *testing.T) {
	tmpDir := t.TempDir()
	loose := filepath.Join(tmpDir, "loose")
	zipPath := filepath.Join(tmpDir, "deps.zip")
	testutil.WriteTree(t, loose, map[string]string{"six.py": "loose"})
	testutil.WriteZip(t, zipPath, map[string]string{"six.py": "zipped"})
	c := newTestClassifier()

	t.Run("loose file earlier in path wins", func(t *testing.T) {
		mod, err := c.Resolve("six", searchpath.Parse([]string{loose, zipPath}))
		require.NoError(t, err)
		assert.Equal(t, SourceFile, mod.Kind)
		assert.Equal(t, filepath.Join(loose, "six.py"), mod.Path)
	})

	t.Run("archive earlier in path wins", func(t *testing.T) {
		mod, err := c.Resolve("six", searchpath.Parse([]string{zipPath, loose}))
		require.NoError(t, err)
		assert.Equal(t, ArchivedEntry, mod.Kind)
	})

	t.Run("missing entries are skipped", func(t *testing.T) {
		mod, err := c.Resolve("six", searchpath.Parse([]string{filepath.Join(tmpDir, "nope"), loose}))
		require.NoError(t, err)
		assert.Equal(t, loose, mod.Entry)
	})
}

func TestResolveNotFound(t *testing.T) {
	site := t.TempDir()
	c := newTestClassifier()

	_, err := c.Resolve("missing", searchpath.Parse([]string{site}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))

	var nf *oerrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.Name)
	assert.Equal(t, []string{site}, nf.SearchPath)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("requests"))
	assert.NoError(t, ValidateName("_speedups"))

	for _, bad := range []string{"", "os.path", "a/b", `a\b`} {
		err := ValidateName(bad)
		assert.True(t, errors.Is(err, oerrors.ErrValidation), "name %q", bad)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "source", SourceFile.String())
	assert.Equal(t, "package", PackageDirectory.String())
	assert.Equal(t, "extension", ExtensionBinary.String())
	assert.Equal(t, "archived", ArchivedEntry.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())

	text, err := PackageDirectory.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "package", string(text))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("extension")))
	assert.Equal(t, ExtensionBinary, k)
	assert.Error(t, k.UnmarshalText([]byte("Kind(0)")))
}

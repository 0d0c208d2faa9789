package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"stager": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("HOME", env.WorkDir)
			env.Setenv("STAGER_CONFIG", filepath.Join(env.WorkDir, ".stager", "config.yaml"))
			env.Setenv("PYTHONPATH", "")
			return nil
		},
		Cmds: map[string]func(*testscript.TestScript, bool, []string){
			"mkzip": mkzipCmd,
		},
	})
}

// mkzipCmd zips the files under a directory: mkzip ARCHIVE DIR.
// Member names are relative to DIR.
func mkzipCmd(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkzip")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: mkzip ARCHIVE DIR")
	}
	archive, dir := ts.MkAbs(args[0]), ts.MkAbs(args[1])

	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	ts.Check(err)
	sort.Strings(files)

	f, err := os.Create(archive)
	ts.Check(err)
	zw := zip.NewWriter(f)
	for _, p := range files {
		rel, err := filepath.Rel(dir, p)
		ts.Check(err)
		w, err := zw.Create(filepath.ToSlash(rel))
		ts.Check(err)
		data, err := os.ReadFile(p)
		ts.Check(err)
		_, err = w.Write(data)
		ts.Check(err)
	}
	ts.Check(zw.Close())
	ts.Check(f.Close())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"a.py", "--json", "-timeout=2s", "-config", "h.yaml", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b"}, opts.paths)
	assert.True(t, opts.json)
	assert.Equal(t, 2*time.Second, opts.timeout)
	assert.Equal(t, "h.yaml", opts.configPath)

	_, err = parseArgs([]string{"-config"})
	assert.EqualError(t, err, "flag -config needs a value")
	_, err = parseArgs([]string{"-verbose", "a.py"})
	assert.EqualError(t, err, "unknown flag -verbose")
	_, err = parseArgs(nil)
	assert.EqualError(t, err, "no input files")

	opts, err = parseArgs([]string{"-help"})
	require.NoError(t, err)
	assert.True(t, opts.help)
}

func TestTextReport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pkg/util.py": "def scale(x):  # type: (float) -> float\n    return x\n",
		"main.py":     "from pkg.util import scale\n\ndef run():\n    return scale(2)\n",
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{dir}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "main.py (main)\n")
	assert.Contains(t, out, "     3  run() -> float\n")
	assert.Contains(t, out, filepath.Join("pkg", "util.py")+" (pkg.util)\n")
	assert.Contains(t, out, "     1  scale(x: float) -> float\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestJSONReport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"hintinfer.yaml": "target_version: \"2.7\"\n",
		"mod.py":         "def f(a: int) -> str:  # type: (bytes) -> bytes\n    pass\n",
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-json", filepath.Join(dir, "mod.py")}, &stdout, &stderr, true)
	require.Equal(t, 0, code, stderr.String())

	var doc structpb.Struct
	require.NoError(t, protojson.Unmarshal(stdout.Bytes(), &doc))
	m := doc.AsMap()
	assert.Equal(t, "2.7", m["target"])

	files := m["files"].([]any)
	require.Len(t, files, 1)
	file := files[0].(map[string]any)
	assert.Equal(t, "mod", file["module"])

	sig := file["signatures"].([]any)[0].(map[string]any)
	assert.Equal(t, "f", sig["name"])
	assert.Equal(t, float64(1), sig["line"])
	assert.Equal(t, []any{"bytes"}, sig["returns"])
	param := sig["params"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"bytes"}, param["types"])
}

func TestTargetOverride(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"mod.py": "def f(a: int) -> str:  # type: (bytes) -> bytes\n    pass\n",
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-target", "3.10", dir}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "f(a: int) -> str")
}

func TestErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-bogus"}, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "unknown flag -bogus")

	stderr.Reset()
	dir := writeFiles(t, map[string]string{"bad.py": "def f(:\n"})
	assert.Equal(t, 1, run([]string{dir}, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "parsing module bad")

	stderr.Reset()
	assert.Equal(t, 1, run([]string{t.TempDir()}, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "no source files")

	stderr.Reset()
	notes := writeFiles(t, map[string]string{"notes.txt": "x = 1\n"})
	assert.Equal(t, 1, run([]string{filepath.Join(notes, "notes.txt")}, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "is not a source file")
}

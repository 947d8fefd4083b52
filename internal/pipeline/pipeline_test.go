package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/inference"
)

func newState(t *testing.T) *inference.State {
	t.Helper()
	s, err := inference.NewState(nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func find(t *testing.T, ctx *PipelineContext, name string) Signature {
	t.Helper()
	for _, sig := range ctx.Signatures {
		if sig.Name == name {
			return sig
		}
	}
	t.Fatalf("no signature %s in %v", name, ctx.Signatures)
	return Signature{}
}

func TestSignatures(t *testing.T) {
	ctx := NewPipelineContext(`
def add(a, b):  # type: (int, int) -> int
    return a + b

def ident(x):
    return x

class Box:
    def get(self):
        return "x"

    @staticmethod
    def make():
        return Box()
`)
	ctx.State = newState(t)
	ctx = New(ReadProcessor{}, LoadProcessor{}, SignatureProcessor{}).Run(ctx)
	require.Empty(t, ctx.Errors)
	assert.Equal(t, "__main__", ctx.ModuleName)

	add := find(t, ctx, "add")
	assert.Equal(t, 2, add.Line)
	assert.Equal(t, []Param{{Name: "a", Types: []string{"int"}}, {Name: "b", Types: []string{"int"}}}, add.Params)
	assert.Equal(t, []string{"int"}, add.Returns)

	ident := find(t, ctx, "ident")
	assert.Empty(t, ident.Params[0].Types)
	assert.Empty(t, ident.Returns)

	get := find(t, ctx, "Box.get")
	assert.Equal(t, []string{"Box"}, get.Params[0].Types)
	assert.Equal(t, []string{"str"}, get.Returns)

	mk := find(t, ctx, "Box.make")
	assert.Empty(t, mk.Params)
	assert.Equal(t, []string{"Box"}, mk.Returns)
}

func TestFilesShareSession(t *testing.T) {
	dir := t.TempDir()
	util := filepath.Join(dir, "util.py")
	main := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(util, []byte("def helper():\n    return 1.5\n"), 0o644))
	require.NoError(t, os.WriteFile(main, []byte("from util import helper\n\ndef run():\n    return helper()\n"), 0o644))

	s := newState(t)
	load := New(ReadProcessor{}, LoadProcessor{})
	var loaded []*PipelineContext
	for _, path := range []string{util, main} {
		ctx := NewPipelineContext("")
		ctx.FilePath = path
		ctx.State = s
		loaded = append(loaded, load.Run(ctx))
	}

	ctx := New(SignatureProcessor{}).Run(loaded[1])
	require.Empty(t, ctx.Errors)
	assert.Equal(t, "main", ctx.ModuleName)
	assert.Equal(t, []string{"float"}, find(t, ctx, "run").Returns)
}

func TestMissingFile(t *testing.T) {
	ctx := NewPipelineContext("")
	ctx.FilePath = filepath.Join(t.TempDir(), "absent.py")
	ctx.State = newState(t)
	ctx = New(ReadProcessor{}, LoadProcessor{}, SignatureProcessor{}).Run(ctx)
	require.Len(t, ctx.Errors, 1)
	assert.Contains(t, ctx.Errors[0].Error(), "absent.py")
	assert.Nil(t, ctx.Module)
	assert.Empty(t, ctx.Signatures)
}

func TestProcessorFunc(t *testing.T) {
	var seen []string
	stage := func(name string) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			seen = append(seen, name)
			return ctx
		})
	}
	ctx := NewPipelineContext("x = 1\n")
	got := New(stage("first"), stage("second")).Run(ctx)
	assert.Same(t, ctx, got)
	assert.Equal(t, []string{"first", "second"}, seen)
}

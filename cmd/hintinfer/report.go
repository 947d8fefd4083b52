package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/hintinfer/internal/inference"
	"github.com/funvibe/hintinfer/internal/pipeline"
)

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

type painter bool

func (p painter) paint(code, text string) string {
	if !p {
		return text
	}
	return code + text + ansiReset
}

func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

func joinTypes(types []string) string {
	if len(types) == 0 {
		return "?"
	}
	return strings.Join(types, " | ")
}

// writeText prints one block per file:
//
//	main.py (main)
//	  3  add(a: int, b: int) -> int
func writeText(w io.Writer, root string, contexts []*pipeline.PipelineContext, color bool) {
	p := painter(color)
	for i, ctx := range contexts {
		if ctx.Module == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", p.paint(ansiBold, displayPath(root, ctx.FilePath)), p.paint(ansiDim, "("+ctx.ModuleName+")"))
		for _, sig := range ctx.Signatures {
			params := make([]string, len(sig.Params))
			for j, param := range sig.Params {
				params[j] = param.Name + ": " + joinTypes(param.Types)
			}
			fmt.Fprintf(w, "  %4d  %s(%s) -> %s\n",
				sig.Line, p.paint(ansiCyan, sig.Name), strings.Join(params, ", "), joinTypes(sig.Returns))
		}
	}
}

func stringList(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// report builds the JSON document of a run.
func report(s *inference.State, root string, contexts []*pipeline.PipelineContext) (*structpb.Struct, error) {
	files := make([]any, 0, len(contexts))
	for _, ctx := range contexts {
		if ctx.Module == nil {
			continue
		}
		sigs := make([]any, len(ctx.Signatures))
		for i, sig := range ctx.Signatures {
			params := make([]any, len(sig.Params))
			for j, param := range sig.Params {
				params[j] = map[string]any{
					"name":  param.Name,
					"types": stringList(param.Types),
				}
			}
			sigs[i] = map[string]any{
				"name":    sig.Name,
				"line":    sig.Line,
				"params":  params,
				"returns": stringList(sig.Returns),
			}
		}
		files = append(files, map[string]any{
			"path":       displayPath(root, ctx.FilePath),
			"module":     ctx.ModuleName,
			"signatures": sigs,
		})
	}
	return structpb.NewStruct(map[string]any{
		"session": s.ID.String(),
		"target":  s.Config.TargetVersion,
		"files":   files,
	})
}

func writeJSON(w io.Writer, s *inference.State, root string, contexts []*pipeline.PipelineContext) error {
	doc, err := report(s, root, contexts)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

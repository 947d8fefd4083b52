package pipeline

import (
	"fmt"
	"os"

	"github.com/funvibe/hintinfer/internal/inference"
	"github.com/funvibe/hintinfer/internal/utils"
)

// ReadProcessor loads SourceCode from FilePath when no source was given.
type ReadProcessor struct{}

func (ReadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.SourceCode != "" || ctx.FilePath == "" {
		return ctx
	}
	data, err := os.ReadFile(ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("reading %s: %w", ctx.FilePath, err))
		return ctx
	}
	ctx.SourceCode = string(data)
	return ctx
}

// LoadProcessor parses the source and registers it with the session so
// other modules can import it.
type LoadProcessor struct{}

func (LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Errors) > 0 || ctx.State == nil {
		return ctx
	}
	if ctx.ModuleName == "" {
		ctx.ModuleName = "__main__"
		if ctx.FilePath != "" {
			ctx.ModuleName = utils.ExtractModuleName(ctx.FilePath)
		}
	}
	mod, err := ctx.State.LoadModule(ctx.ModuleName, ctx.SourceCode)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Module = mod
	return ctx
}

// SignatureProcessor infers the parameter and return types of every
// top-level function and every method of a top-level class.
type SignatureProcessor struct{}

func (SignatureProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Module == nil {
		return ctx
	}
	s := ctx.State
	for _, def := range ctx.Module.Definitions() {
		switch def := def.(type) {
		case *inference.FunctionValue:
			ctx.Signatures = append(ctx.Signatures, signature(def.Name(), s.NewExecution(def, nil)))
		case *inference.ClassValue:
			for _, method := range def.Methods() {
				name := def.Name() + "." + method.Name()
				ctx.Signatures = append(ctx.Signatures, signature(name, s.NewMethodExecution(def, method)))
			}
		}
	}
	return ctx
}

func signature(name string, exec *inference.FunctionExecution) Signature {
	sig := Signature{
		Name:    name,
		Line:    exec.Function.Node().Start.Line,
		Returns: inference.TypeNames(exec.ReturnValues()),
	}
	for _, p := range exec.Params() {
		sig.Params = append(sig.Params, Param{
			Name:  p.Param.Name.Value,
			Types: inference.TypeNames(exec.ParamValues(p)),
		})
	}
	return sig
}

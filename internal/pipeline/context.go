package pipeline

import (
	"github.com/funvibe/hintinfer/internal/inference"
)

// PipelineContext carries one source file through the stages.
type PipelineContext struct {
	FilePath   string
	SourceCode string
	ModuleName string

	State  *inference.State
	Module *inference.ModuleValue

	Signatures []Signature
	Errors     []error
}

// NewPipelineContext creates a context for source text. FilePath and
// ModuleName are filled in by the caller or by the read stage.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{SourceCode: source}
}

// Processor is one stage of a pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Param is one inferred parameter of a Signature.
type Param struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// Signature is the inferred shape of one function or method.
type Signature struct {
	Name    string   `json:"name"`
	Line    int      `json:"line"`
	Params  []Param  `json:"params"`
	Returns []string `json:"returns"`
}

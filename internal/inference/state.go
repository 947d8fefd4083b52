// Package inference is the static inference engine. A State is one
// inference session: it owns the memoization cache, the native registry and
// the parsed generic-types reference module. Everything evaluated through a
// State shares its cache; nothing is shared across States.
package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/native"
	"github.com/funvibe/hintinfer/internal/parser"
	"github.com/funvibe/hintinfer/internal/values"
)

// Limits of the execution recursion detector.
const (
	maxSameFunctionDepth = 2
	maxExecutionDepth    = 40
)

type State struct {
	ID      uuid.UUID
	Config  *config.Config
	Natives *native.Registry

	log     *log.Logger
	cache   *memo.Cache
	ctx     context.Context
	steps   int
	modules map[string]*ModuleValue
	typing  *ModuleValue
	factory *FunctionExecution

	executing map[*ast.FuncDef]int
	depth     int
}

// Option configures a State.
type Option func(*State)

// WithLogOutput sends the session log to w regardless of Config.Debug.
func WithLogOutput(w io.Writer) Option {
	return func(s *State) {
		s.log.SetOutput(w)
	}
}

// NewState starts an inference session. A nil cfg means DefaultConfig.
func NewState(cfg *config.Config, opts ...Option) (*State, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	natives, err := native.Builtins()
	if err != nil {
		return nil, fmt.Errorf("loading builtins: %w", err)
	}
	for _, path := range cfg.NativeFiles() {
		if err := natives.LoadFile(path); err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	s := &State{
		ID:        id,
		Config:    cfg,
		Natives:   natives,
		log:       log.New(io.Discard, fmt.Sprintf("[%s] ", id.String()[:8]), log.Lmsgprefix),
		ctx:       context.Background(),
		modules:   make(map[string]*ModuleValue),
		executing: make(map[*ast.FuncDef]int),
	}
	if cfg.Debug {
		s.log.SetOutput(log.Writer())
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = memo.New(s.warnf)
	return s, nil
}

// WithContext installs ctx as the deadline of further evaluation. Once ctx
// is done every evaluation step returns the empty set.
func (s *State) WithContext(ctx context.Context) *State {
	s.ctx = ctx
	s.steps = 0
	return s
}

// Close ends the session and drops its cache.
func (s *State) Close() {
	s.cache.Clear()
	clear(s.modules)
	s.typing = nil
	s.factory = nil
}

// Cache exposes the session cache.
func (s *State) Cache() *memo.Cache { return s.cache }

func (s *State) warnf(format string, args ...any) {
	s.log.Printf("warning: "+format, args...)
}

func (s *State) debugf(format string, args ...any) {
	s.log.Printf(format, args...)
}

// exhausted counts one evaluation step and reports whether the session
// deadline or step budget is used up.
// Results computed while exhausted are not cached, so a later deadline
// starts from complete entries only.
func (s *State) exhausted() bool {
	if s.ctx.Err() == nil {
		s.steps++
		if s.Config.MaxSteps <= 0 || s.steps <= s.Config.MaxSteps {
			return false
		}
	}
	s.cache.Taint()
	return true
}

// recoverContract turns a construction-contract panic into the fallback
// result. Deferred by every exported entry point.
func recoverContract[T any](s *State, result *T, fallback T) {
	r := recover()
	if r == nil {
		return
	}
	var contract *values.ContractError
	if err, ok := r.(error); ok && errors.As(err, &contract) {
		s.log.Printf("error: %v", contract)
		*result = fallback
		return
	}
	panic(r)
}

// LoadModule parses src and registers it under name for imports.
func (s *State) LoadModule(name, src string) (*ModuleValue, error) {
	tree, err := parser.ParseModule(name, src)
	if err != nil {
		return nil, fmt.Errorf("parsing module %s: %w", name, err)
	}
	m := &ModuleValue{state: s, name: name, node: tree}
	s.modules[name] = m
	s.debugf("loaded module %s (%d lines)", name, tree.Lines)
	return m, nil
}

// Import resolves an absolute module name.
func (s *State) Import(name string) values.ValueSet {
	if name == s.Config.TypingModule {
		if m := s.typingModule(); m != nil {
			return values.NewSet(m)
		}
		return values.NoValues
	}
	if m, ok := s.modules[name]; ok {
		return values.NewSet(m)
	}
	s.warnf("module %s not found", name)
	return values.NoValues
}

// enter registers an execution of fn. It reports false when the execution
// would recurse too deep; the caller then gives up with the empty set.
func (s *State) enter(fn *ast.FuncDef) bool {
	if s.executing[fn] >= maxSameFunctionDepth || s.depth >= maxExecutionDepth {
		s.debugf("execution recursion limit reached in %s", fn.Name.Value)
		return false
	}
	s.executing[fn]++
	s.depth++
	return true
}

func (s *State) leave(fn *ast.FuncDef) {
	s.executing[fn]--
	s.depth--
}

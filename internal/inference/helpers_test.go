package inference

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/values"
)

func newState(t *testing.T, opts ...Option) *State {
	t.Helper()
	s, err := NewState(nil, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func newStateFor(t *testing.T, yaml string) *State {
	t.Helper()
	cfg, err := config.ParseConfig([]byte(yaml), "hintinfer.yaml")
	require.NoError(t, err)
	s, err := NewState(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func load(t *testing.T, s *State, src string) *ModuleValue {
	t.Helper()
	m, err := s.LoadModule("main", src)
	require.NoError(t, err)
	return m
}

func lookup(t *testing.T, m *ModuleValue, name string) values.ValueSet {
	t.Helper()
	vs, ok := m.Lookup(name)
	require.True(t, ok, "%s is not defined", name)
	return vs
}

func function(t *testing.T, m *ModuleValue, name string) *FunctionValue {
	t.Helper()
	v, ok := lookup(t, m, name).Only()
	require.True(t, ok, "%s is ambiguous", name)
	fn, ok := v.(*FunctionValue)
	require.True(t, ok, "%s is %s, not a function", name, v)
	return fn
}

// typeOf is what an object of the literal's class infers to.
func typeOf(s *State, literal any) values.ValueSet {
	return values.NewSet(s.Natives.ConstantOf(literal)).Class().ExecuteAnnotation()
}

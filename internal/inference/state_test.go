package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/values"
)

func TestContractViolationDegrades(t *testing.T) {
	s := newState(t)
	result := func() (r values.ValueSet) {
		defer recoverContract(s, &r, values.NoValues)
		return values.NewSet(nil)
	}()
	assert.True(t, result.Known())
	assert.True(t, result.Empty())

	assert.Panics(t, func() {
		var r values.ValueSet
		defer recoverContract(s, &r, values.NoValues)
		panic("not a contract violation")
	})
}

func TestCancelledContext(t *testing.T) {
	s := newState(t)
	m := load(t, s, "x = 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.WithContext(ctx)
	assert.True(t, lookup(t, m, "x").Empty())
}

func TestNewDeadlineRecomputes(t *testing.T) {
	s := newState(t)
	m := load(t, s, "x = 1\ny = x\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.WithContext(ctx)
	assert.True(t, lookup(t, m, "y").Empty())

	s.WithContext(context.Background())
	assert.True(t, lookup(t, m, "y").Equal(lookup(t, m, "x")))
	assert.False(t, lookup(t, m, "y").Empty())
}

func TestMaxSteps(t *testing.T) {
	s := newStateFor(t, "max_steps: 1\n")
	m := load(t, s, `
a = 1
b = a
`)
	assert.True(t, lookup(t, m, "b").Empty())
}

func TestSessionsAreIndependent(t *testing.T) {
	first := newState(t)
	second := newState(t)
	assert.NotEqual(t, first.ID, second.ID)

	m := load(t, first, "x = 1\n")
	lookup(t, m, "x")
	assert.True(t, second.Import("main").Empty())
	assert.NotZero(t, first.Cache().Len())
	assert.Zero(t, second.Cache().Len())

	first.Close()
	assert.Zero(t, first.Cache().Len())
}

func TestUnknownModuleWarns(t *testing.T) {
	s := newState(t)
	require.True(t, s.Import("nowhere").Empty())
	m := load(t, s, "import nowhere\nx = nowhere.attr\n")
	assert.True(t, lookup(t, m, "x").Empty())
}

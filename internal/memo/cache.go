// Package memo is the memoization substrate every recursive inference
// function runs on. A Cache belongs to one inference session and is dropped
// with it; entries are never invalidated individually.
package memo

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Call identifies one invocation of a memoized function. Keyword arguments
// are order independent.
type Call struct {
	Func   string
	Args   []any
	Kwargs map[string]any
}

// On builds a Call with positional arguments only.
func On(fn string, args ...any) Call {
	return Call{Func: fn, Args: args}
}

// entry keeps its call so that objects keyed by address stay alive, and
// their addresses unique, for as long as the entry exists.
type entry struct {
	value      any
	inProgress bool
	call       Call
}

// Stats counts cache traffic.
type Stats struct {
	Hits     int
	Misses   int
	Bypassed int
}

// Cache maps call keys to results or to a recursion sentinel.
type Cache struct {
	entries map[string]*entry
	warnf   func(format string, args ...any)
	stats   Stats
	taints  int
}

// New creates an empty cache. warnf receives non-fatal conditions and may
// be nil.
func New(warnf func(format string, args ...any)) *Cache {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Cache{entries: make(map[string]*entry), warnf: warnf}
}

func (c *Cache) Len() int     { return len(c.entries) }
func (c *Cache) Stats() Stats { return c.stats }

// Taint marks every computation running now as incomplete: their results
// are returned to their callers but not stored.
func (c *Cache) Taint() { c.taints++ }

// store finishes the computation under key that started at taint count
// since.
func (c *Cache) store(key string, call Call, since int, value any) {
	if c.taints != since {
		delete(c.entries, key)
		return
	}
	c.entries[key] = &entry{value: value, call: call}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
	c.stats = Stats{}
}

// Key encodes a call. ok is false when an argument cannot take part in a
// key (slices, maps, funcs), in which case callers skip caching.
func (c *Cache) Key(call Call) (string, bool) {
	var b strings.Builder
	b.WriteString(call.Func)
	b.WriteByte('(')
	for i, arg := range call.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		part, ok := keyPart(arg)
		if !ok {
			return "", false
		}
		b.WriteString(part)
	}
	if len(call.Kwargs) > 0 {
		names := make([]string, 0, len(call.Kwargs))
		for name := range call.Kwargs {
			names = append(names, name)
		}
		slices.Sort(names)
		b.WriteString(";")
		for _, name := range names {
			part, ok := keyPart(call.Kwargs[name])
			if !ok {
				return "", false
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(part)
			b.WriteByte(',')
		}
	}
	b.WriteByte(')')
	return b.String(), true
}

type hasher interface {
	Hash() string
}

func keyPart(arg any) (string, bool) {
	switch v := arg.(type) {
	case nil:
		return "nil", true
	case string:
		return strconv.Quote(v), true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%T:%v", v, v), true
	case hasher:
		return "h" + strconv.Quote(v.Hash()), true
	}

	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return fmt.Sprintf("%T@%x", arg, rv.Pointer()), true
	case reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			part, ok := keyPart(rv.Index(i).Interface())
			if !ok {
				return "", false
			}
			parts[i] = part
		}
		return "[" + strings.Join(parts, ",") + "]", true
	case reflect.Struct:
		if !rv.Comparable() {
			return "", false
		}
		return fmt.Sprintf("%T%+v", arg, arg), true
	default:
		return "", false
	}
}

func (c *Cache) lookup(call Call) (string, *entry, bool) {
	key, ok := c.Key(call)
	if !ok {
		c.stats.Bypassed++
		c.warnf("cache key is not hashable: %s %v %v", call.Func, call.Args, call.Kwargs)
		return "", nil, false
	}
	e, hit := c.entries[key]
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return key, e, true
}

// Memoize is a plain memoized call: compute once per key and reuse.
func Memoize[T any](c *Cache, call Call, compute func() T) T {
	key, e, ok := c.lookup(call)
	if !ok {
		return compute()
	}
	if e != nil {
		v, _ := e.value.(T)
		return v
	}
	since := c.taints
	result := compute()
	c.store(key, call, since, result)
	return result
}

// Guard is a recursion-guarded memoized call. The default is stored under
// the key before computing, so a recursive request for the same key while
// the computation runs gets the default instead of recursing.
func Guard[T any](c *Cache, call Call, def T, compute func() T) T {
	key, e, ok := c.lookup(call)
	if !ok {
		return compute()
	}
	if e != nil {
		v, _ := e.value.(T)
		return v
	}
	since := c.taints
	c.entries[key] = &entry{value: def, inProgress: true, call: call}
	result := compute()
	c.store(key, call, since, result)
	return result
}

// Collect memoizes a function producing a sequence. The sequence is drained
// once and the materialized slice is cached; a recursive request while
// draining yields no elements.
func Collect[T any](c *Cache, call Call, produce func() iter.Seq[T]) []T {
	key, e, ok := c.lookup(call)
	if !ok {
		return slices.Collect(produce())
	}
	if e != nil {
		if e.inProgress {
			return nil
		}
		v, _ := e.value.([]T)
		return v
	}
	since := c.taints
	seq := produce()
	c.entries[key] = &entry{inProgress: true, call: call}
	result := slices.Collect(seq)
	c.store(key, call, since, result)
	return result
}

// Construct caches object construction: structurally identical requests
// yield the identical instance. It is Guard with the zero value as default.
func Construct[T any](c *Cache, call Call, build func() T) T {
	var zero T
	return Guard(c, call, zero, build)
}

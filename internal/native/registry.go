// Package native represents built-in and foreign objects behind the
// values.Value interface.
//
// Objects are described by snapshots: protobuf Struct documents with a
// "classes" map and a "functions" map. A class entry may carry
//
//	bases       list of base class names
//	methods     name -> return class name, or {"returns": ..., "doc": ...}
//	attributes  name -> class name
//	iterates    class of the elements produced by iteration
//	items       class of the result of indexing
//
// A method returning "self" returns an instance of the receiver's class.
// Entries without "returns" fall back to the return type written in their
// doc text (see ParseDoc).
package native

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/values"
)

//go:embed builtins.json
var builtinsSnapshot []byte

// Registry holds the native classes and functions of one session.
type Registry struct {
	classes   map[string]*structpb.Struct
	functions map[string]*structpb.Struct

	classValues    map[string]*Class
	instanceValues map[string]*Instance
	funcValues     map[string]*Function
}

func New() *Registry {
	return &Registry{
		classes:        make(map[string]*structpb.Struct),
		functions:      make(map[string]*structpb.Struct),
		classValues:    make(map[string]*Class),
		instanceValues: make(map[string]*Instance),
		funcValues:     make(map[string]*Function),
	}
}

// Builtins returns a registry loaded with the embedded builtins snapshot.
func Builtins() (*Registry, error) {
	r := New()
	if err := r.Load(builtinsSnapshot, "builtins.json"); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFile merges the snapshot stored at path.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return r.Load(data, path)
}

// Load merges a JSON snapshot. Later definitions replace earlier ones.
// The origin argument is used only for error messages.
func (r *Registry) Load(data []byte, origin string) error {
	var snap structpb.Struct
	if err := protojson.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot %s: %w", origin, err)
	}
	return r.Merge(&snap, origin)
}

// Merge adds the classes and functions of an already decoded snapshot.
func (r *Registry) Merge(snap *structpb.Struct, origin string) error {
	for key, v := range snap.GetFields() {
		switch key {
		case "classes":
			entries, err := structEntries(v, origin, key)
			if err != nil {
				return err
			}
			for name, entry := range entries {
				r.classes[name] = entry
				delete(r.classValues, name)
				delete(r.instanceValues, name)
			}
		case "functions":
			entries, err := structEntries(v, origin, key)
			if err != nil {
				return err
			}
			for name, entry := range entries {
				r.functions[name] = entry
				delete(r.funcValues, name)
			}
		default:
			return fmt.Errorf("%s: unknown snapshot section %q", origin, key)
		}
	}
	return nil
}

func structEntries(v *structpb.Value, origin, section string) (map[string]*structpb.Struct, error) {
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("%s: %s must be an object", origin, section)
	}
	out := make(map[string]*structpb.Struct, len(s.GetFields()))
	for name, entry := range s.GetFields() {
		es := entry.GetStructValue()
		if es == nil {
			return nil, fmt.Errorf("%s: %s.%s must be an object", origin, section, name)
		}
		out[name] = es
	}
	return out, nil
}

// Names returns every class and function name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes)+len(r.functions))
	for name := range r.classes {
		names = append(names, name)
	}
	for name := range r.functions {
		if _, dup := r.classes[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a builtin name to its class or function.
func (r *Registry) Lookup(name string) values.ValueSet {
	if c, ok := r.Class(name); ok {
		return values.NewSet(c)
	}
	if f, ok := r.Function(name); ok {
		return values.NewSet(f)
	}
	return values.NoValues
}

// Class returns the class value for name. Repeated calls return the
// identical value.
func (r *Registry) Class(name string) (*Class, bool) {
	if c, ok := r.classValues[name]; ok {
		return c, true
	}
	entry, ok := r.classes[name]
	if !ok {
		return nil, false
	}
	c := &Class{reg: r, name: name, entry: entry}
	r.classValues[name] = c
	return c, true
}

// Instance returns an instance of the named class, or NoValues for an
// unknown class.
func (r *Registry) Instance(name string) values.ValueSet {
	if inst, ok := r.instanceValues[name]; ok {
		return values.NewSet(inst)
	}
	c, ok := r.Class(name)
	if !ok {
		return values.NoValues
	}
	inst := &Instance{class: c}
	r.instanceValues[name] = inst
	return values.NewSet(inst)
}

func (r *Registry) Function(name string) (*Function, bool) {
	if f, ok := r.funcValues[name]; ok {
		return f, true
	}
	entry, ok := r.functions[name]
	if !ok {
		return nil, false
	}
	f := &Function{reg: r, name: name, entry: entry}
	r.funcValues[name] = f
	return f, true
}

// Constant returns the compiled constant v whose class is class.
func (r *Registry) Constant(class string, v any) *Constant {
	return &Constant{reg: r, class: class, value: v}
}

// ConstantOf picks the class of a Go constant: int64, float64, complex128,
// string, bool or nil.
func (r *Registry) ConstantOf(v any) *Constant {
	switch v.(type) {
	case nil:
		return r.Constant(config.NoneClassName, nil)
	case bool:
		return r.Constant(config.BoolClassName, v)
	case int64:
		return r.Constant(config.IntClassName, v)
	case float64:
		return r.Constant(config.FloatClassName, v)
	case complex128:
		return r.Constant(config.ComplexClassName, v)
	}
	return r.Constant(config.StrClassName, v)
}

// returnClass resolves the return class recorded for a method or function
// entry. owner names the receiver class for "self".
func returnClass(entry *structpb.Value, owner string) string {
	var ret string
	switch kind := entry.GetKind().(type) {
	case *structpb.Value_StringValue:
		ret = kind.StringValue
	case *structpb.Value_StructValue:
		fields := kind.StructValue.GetFields()
		ret = fields["returns"].GetStringValue()
		if ret == "" {
			_, ret = ParseDoc(fields["doc"].GetStringValue())
		}
	}
	if ret == "self" {
		return owner
	}
	return ret
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func structField(s *structpb.Struct, key string) map[string]*structpb.Value {
	return s.GetFields()[key].GetStructValue().GetFields()
}

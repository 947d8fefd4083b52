package native

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/values"
)

// Class is a native class such as int or list.
type Class struct {
	values.Base
	reg   *Registry
	name  string
	entry *structpb.Struct
}

func (c *Class) Kind() values.Kind { return values.KindNative }
func (c *Class) Name() string      { return c.name }
func (c *Class) Hash() string      { return "native:class:" + c.name }
func (c *Class) String() string    { return fmt.Sprintf("<native class %s>", c.name) }

// Bases returns the direct base classes known to the registry.
func (c *Class) Bases() []*Class {
	var bases []*Class
	for _, b := range c.entry.GetFields()["bases"].GetListValue().GetValues() {
		if base, ok := c.reg.Class(b.GetStringValue()); ok && base != c {
			bases = append(bases, base)
		}
	}
	return bases
}

// MRO returns the class followed by its ancestors, depth first, each once.
func (c *Class) MRO() []*Class {
	var order []*Class
	seen := map[string]bool{}
	var walk func(*Class)
	walk = func(k *Class) {
		if seen[k.name] {
			return
		}
		seen[k.name] = true
		order = append(order, k)
		for _, b := range k.Bases() {
			walk(b)
		}
	}
	walk(c)
	return order
}

// IsSubclass reports whether name is c or one of its ancestors.
func (c *Class) IsSubclass(name string) bool {
	for _, k := range c.MRO() {
		if k.name == name {
			return true
		}
	}
	return false
}

// member finds a method or attribute along the MRO.
func (c *Class) member(name string) (entry *structpb.Value, method bool, owner *Class) {
	for _, k := range c.MRO() {
		if m, ok := structField(k.entry, "methods")[name]; ok {
			return m, true, k
		}
		if a, ok := structField(k.entry, "attributes")[name]; ok {
			return a, false, k
		}
	}
	return nil, false, nil
}

// feature finds a class-level string feature ("iterates", "items") along
// the MRO.
func (c *Class) feature(key string) string {
	for _, k := range c.MRO() {
		if v := stringField(k.entry, key); v != "" {
			return v
		}
	}
	return ""
}

func (c *Class) Attr(name string) values.ValueSet {
	entry, method, owner := c.member(name)
	switch {
	case entry == nil:
		return values.NoValues
	case method:
		return values.NewSet(&Method{class: owner, name: name, entry: entry})
	}
	return c.reg.Instance(entry.GetStringValue())
}

func (c *Class) Call(values.Arguments) values.ValueSet { return c.reg.Instance(c.name) }
func (c *Class) ExecuteAnnotation() values.ValueSet    { return c.reg.Instance(c.name) }

func (c *Class) Class() values.ValueSet {
	if t, ok := c.reg.Class(config.TypeClassName); ok {
		return values.NewSet(t)
	}
	return values.NoValues
}

// instanceAttr resolves an attribute looked up on an instance of c; methods
// come back bound to the receiver.
func (c *Class) instanceAttr(name string) values.ValueSet {
	entry, method, owner := c.member(name)
	switch {
	case entry == nil:
		return values.NoValues
	case method:
		return values.NewSet(&Method{class: owner, receiver: c, name: name, entry: entry})
	}
	return c.reg.Instance(entry.GetStringValue())
}

func (c *Class) iterate() []values.Lazy {
	elem := c.feature("iterates")
	if elem == "" {
		return nil
	}
	return []values.Lazy{lazy.NewKnownSet(c.reg.Instance(elem), lazy.Arity(0, values.Unbounded))}
}

func (c *Class) getItem() values.ValueSet {
	if item := c.feature("items"); item != "" {
		return c.reg.Instance(item)
	}
	return values.NoValues
}

// Instance is an object of a native class whose value is not known.
type Instance struct {
	values.Base
	class *Class
}

func (i *Instance) Kind() values.Kind                { return values.KindNative }
func (i *Instance) Name() string                     { return i.class.name }
func (i *Instance) Hash() string                     { return "native:instance:" + i.class.name }
func (i *Instance) String() string                   { return fmt.Sprintf("<native %s instance>", i.class.name) }
func (i *Instance) Attr(name string) values.ValueSet { return i.class.instanceAttr(name) }
func (i *Instance) Iterate() []values.Lazy           { return i.class.iterate() }
func (i *Instance) GetItem(any) values.ValueSet      { return i.class.getItem() }
func (i *Instance) Class() values.ValueSet           { return values.NewSet(i.class) }

// NativeClass returns the class the instance belongs to.
func (i *Instance) NativeClass() *Class { return i.class }

// Constant is a compiled constant of the analyzed program: a number,
// string, bytes, bool or None literal.
type Constant struct {
	values.Base
	reg   *Registry
	class string
	value any
}

func (c *Constant) Kind() values.Kind { return values.KindConstant }
func (c *Constant) Name() string      { return c.class }
func (c *Constant) Hash() string      { return fmt.Sprintf("native:const:%s:%#v", c.class, c.value) }
func (c *Constant) Literal() any      { return c.value }

func (c *Constant) String() string {
	switch v := c.value.(type) {
	case nil:
		return "None"
	case string:
		if c.class == "bytes" {
			return fmt.Sprintf("b%q", v)
		}
		return fmt.Sprintf("%q", v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(c.value)
}

// ExecuteAnnotation makes `None` in an annotation stand for the None
// object itself.
func (c *Constant) ExecuteAnnotation() values.ValueSet {
	if c.value == nil && c.class == "NoneType" {
		return values.NewSet(c)
	}
	return values.NoValues
}

func (c *Constant) nativeClass() *Class {
	k, _ := c.reg.Class(c.class)
	return k
}

func (c *Constant) Attr(name string) values.ValueSet {
	if k := c.nativeClass(); k != nil {
		return k.instanceAttr(name)
	}
	return values.NoValues
}

func (c *Constant) Iterate() []values.Lazy {
	if k := c.nativeClass(); k != nil {
		return k.iterate()
	}
	return nil
}

func (c *Constant) GetItem(any) values.ValueSet {
	if k := c.nativeClass(); k != nil {
		return k.getItem()
	}
	return values.NoValues
}

func (c *Constant) Class() values.ValueSet {
	if k := c.nativeClass(); k != nil {
		return values.NewSet(k)
	}
	return values.NoValues
}

// Function is a native module-level function such as len.
type Function struct {
	values.Base
	reg   *Registry
	name  string
	entry *structpb.Struct
}

func (f *Function) Kind() values.Kind { return values.KindNative }
func (f *Function) Name() string      { return f.name }
func (f *Function) Hash() string      { return "native:func:" + f.name }
func (f *Function) String() string    { return fmt.Sprintf("<native function %s>", f.name) }

func (f *Function) Call(values.Arguments) values.ValueSet {
	ret := returnClass(structpb.NewStructValue(f.entry), "")
	if ret == "" {
		return values.NoValues
	}
	return f.reg.Instance(ret)
}

func (f *Function) Class() values.ValueSet {
	if k, ok := f.reg.Class(config.FunctionClassName); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

// Method is a method of a native class, bound when receiver is set.
type Method struct {
	values.Base
	class    *Class
	receiver *Class
	name     string
	entry    *structpb.Value
}

func (m *Method) Kind() values.Kind { return values.KindNative }
func (m *Method) Name() string      { return m.name }

func (m *Method) Hash() string {
	if m.receiver != nil {
		return fmt.Sprintf("native:method:%s.%s@%s", m.class.name, m.name, m.receiver.name)
	}
	return fmt.Sprintf("native:method:%s.%s", m.class.name, m.name)
}

func (m *Method) String() string {
	return fmt.Sprintf("<native method %s.%s>", m.class.name, m.name)
}

func (m *Method) Call(values.Arguments) values.ValueSet {
	owner := m.class
	if m.receiver != nil {
		owner = m.receiver
	}
	ret := returnClass(m.entry, owner.name)
	if ret == "" {
		return values.NoValues
	}
	return m.class.reg.Instance(ret)
}

func (m *Method) Class() values.ValueSet {
	if k, ok := m.class.reg.Class(config.FunctionClassName); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

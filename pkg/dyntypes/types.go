// Package dyntypes synthesizes types at run time.
//
// A TypeGenerator holds an ordered list of member generators (fields,
// properties, redirected properties, methods and redirection shims). Compile
// opens a TypeBuilder, lets every member define itself, finalizes the type and
// then lets every member resolve handles into the finished type. The result is
// an immutable *Type whose instances are created with Type.New.
package dyntypes

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/toyz/dyntypes/internal/errors"
)

// Kind classifies a Type
type Kind int

const (
	// KindValue wraps a Go type.
	KindValue Kind = iota
	// KindContract declares abstract properties and methods, like an interface.
	KindContract
	// KindClass is a type produced by a TypeBuilder.
	KindClass
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindContract:
		return "contract"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// Type is a finalized, immutable type handle. Identity is pointer identity.
type Type struct {
	name       string
	id         uuid.UUID
	kind       Kind
	goType     reflect.Type
	fields     []*FieldInfo
	properties []*PropertyInfo
	methods    []*MethodInfo
	interfaces []*Type
	impls      map[*MethodInfo]*MethodInfo
	attributes []Attribute
}

var valueTypes sync.Map // reflect.Type -> *Type

// TypeOf returns the value type wrapping T
func TypeOf[T any]() *Type {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeFor returns the canonical value type wrapping rt. It returns nil for a nil rt.
func TypeFor(rt reflect.Type) *Type {
	if rt == nil {
		return nil
	}
	if t, ok := valueTypes.Load(rt); ok {
		return t.(*Type)
	}
	t, _ := valueTypes.LoadOrStore(rt, &Type{
		name:   rt.String(),
		id:     uuid.New(),
		kind:   KindValue,
		goType: rt,
	})
	return t.(*Type)
}

// Name returns the type name
func (t *Type) Name() string { return t.name }

// String returns the type name
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	return t.name
}

// ID returns the unique identifier assigned when the type was created
func (t *Type) ID() uuid.UUID { return t.id }

// Kind returns the kind of the type
func (t *Type) Kind() Kind { return t.kind }

// GoType returns the wrapped Go type for value types and contracts lifted from Go interfaces
func (t *Type) GoType() reflect.Type { return t.goType }

// Fields returns the fields in definition order
func (t *Type) Fields() []*FieldInfo { return append([]*FieldInfo(nil), t.fields...) }

// Properties returns the properties in definition order
func (t *Type) Properties() []*PropertyInfo {
	return append([]*PropertyInfo(nil), t.properties...)
}

// Methods returns the methods in definition order, accessors included
func (t *Type) Methods() []*MethodInfo { return append([]*MethodInfo(nil), t.methods...) }

// Interfaces returns the contracts the type implements
func (t *Type) Interfaces() []*Type { return append([]*Type(nil), t.interfaces...) }

// Attributes returns the attributes attached to the type
func (t *Type) Attributes() []Attribute { return append([]Attribute(nil), t.attributes...) }

// Field looks up a field by name
func (t *Type) Field(name string) (*FieldInfo, bool) {
	for _, f := range t.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// Property looks up a property by name
func (t *Type) Property(name string) (*PropertyInfo, bool) {
	for _, p := range t.properties {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Method looks up a method by name
func (t *Type) Method(name string) (*MethodInfo, bool) {
	for _, m := range t.methods {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// PropertyNames returns the sorted property names
func (t *Type) PropertyNames() []string {
	names := make([]string, len(t.properties))
	for i, p := range t.properties {
		names[i] = p.name
	}
	sort.Strings(names)
	return names
}

// Implements reports whether t satisfies contract
func (t *Type) Implements(contract *Type) bool {
	if contract == nil || contract.kind != KindContract {
		return false
	}
	if t == contract {
		return true
	}
	if t.kind == KindValue && contract.goType != nil {
		return t.goType.Implements(contract.goType)
	}
	for _, iface := range t.interfaces {
		if iface == contract {
			return true
		}
	}
	return false
}

// ImplementationOf returns the method of t that satisfies the contract method decl
func (t *Type) ImplementationOf(decl *MethodInfo) (*MethodInfo, bool) {
	impl, ok := t.impls[decl]
	return impl, ok
}

// IsInstance reports whether v may be stored in a slot of type t
func (t *Type) IsInstance(v any) bool {
	if v == nil {
		return t.nilable()
	}
	if obj, ok := v.(*Object); ok && t.kind != KindValue {
		if obj == nil {
			return true
		}
		if t.kind == KindClass {
			return obj.typ == t
		}
		return obj.typ.Implements(t)
	}
	switch t.kind {
	case KindValue:
		return reflect.TypeOf(v).AssignableTo(t.goType)
	case KindContract:
		return t.goType != nil && reflect.TypeOf(v).Implements(t.goType)
	}
	return false
}

// Zero returns the zero value stored in a fresh slot of type t
func (t *Type) Zero() any {
	if t.kind != KindValue {
		return nil
	}
	return reflect.Zero(t.goType).Interface()
}

// New creates a zero-initialized instance of a class type
func (t *Type) New() (*Object, error) {
	if t.kind != KindClass {
		return nil, errors.NewInvocationError(t.name, "New", fmt.Sprintf("cannot instantiate a %s type", t.kind))
	}
	slots := make([]any, len(t.fields))
	for i, f := range t.fields {
		slots[i] = f.typ.Zero()
	}
	return &Object{typ: t, slots: slots}, nil
}

func (t *Type) nilable() bool {
	if t.kind != KindValue {
		return true
	}
	switch t.goType.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func sameSignature(ret1 *Type, params1 []*Type, ret2 *Type, params2 []*Type) bool {
	if ret1 != ret2 || len(params1) != len(params2) {
		return false
	}
	for i := range params1 {
		if params1[i] != params2[i] {
			return false
		}
	}
	return true
}

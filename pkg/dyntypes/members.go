package dyntypes

import (
	"fmt"
	"strings"

	"github.com/toyz/dyntypes/internal/emit"
	"github.com/toyz/dyntypes/internal/errors"
)

// MethodAttributes describes the shape of a method
type MethodAttributes uint32

const (
	MethodPublic MethodAttributes = 1 << iota
	MethodPrivate
	MethodVirtual
	MethodAbstract
	MethodSpecialName
	MethodHideBySig
)

// AccessorAttributes is the shape shared by every generated property accessor.
const AccessorAttributes = MethodPublic | MethodSpecialName | MethodHideBySig

// Has reports whether every flag in flags is set
func (a MethodAttributes) Has(flags MethodAttributes) bool {
	return a&flags == flags
}

// String returns the set flags joined by '|'
func (a MethodAttributes) String() string {
	var names []string
	for _, f := range []struct {
		flag MethodAttributes
		name string
	}{
		{MethodPublic, "public"},
		{MethodPrivate, "private"},
		{MethodVirtual, "virtual"},
		{MethodAbstract, "abstract"},
		{MethodSpecialName, "specialname"},
		{MethodHideBySig, "hidebysig"},
	} {
		if a&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}

// FieldAttributes describes the visibility of a field
type FieldAttributes uint32

const (
	FieldPrivate FieldAttributes = 0
	FieldPublic  FieldAttributes = 1
)

// PropertyAttributes describes a property slot
type PropertyAttributes uint32

const (
	PropertyNone       PropertyAttributes = 0
	PropertyHasDefault PropertyAttributes = 1
)

// FieldInfo is a resolved field of a finalized type
type FieldInfo struct {
	name       string
	declaring  *Type
	typ        *Type
	slot       int
	attrs      FieldAttributes
	attributes []Attribute
}

// Name returns the field name
func (f *FieldInfo) Name() string { return f.name }

// Type returns the field type
func (f *FieldInfo) Type() *Type { return f.typ }

// DeclaringType returns the type owning the field
func (f *FieldInfo) DeclaringType() *Type { return f.declaring }

// Slot returns the storage index of the field within an instance
func (f *FieldInfo) Slot() int { return f.slot }

// IsPublic reports whether the field is visible through Object.Get and Object.Set
func (f *FieldInfo) IsPublic() bool { return f.attrs&FieldPublic != 0 }

// Attributes returns the attributes attached to the field
func (f *FieldInfo) Attributes() []Attribute { return append([]Attribute(nil), f.attributes...) }

// GetValue reads the field of obj regardless of visibility
func (f *FieldInfo) GetValue(obj *Object) (any, error) {
	if err := f.checkTarget(obj); err != nil {
		return nil, err
	}
	return obj.LoadField(f.slot)
}

// SetValue writes the field of obj regardless of visibility
func (f *FieldInfo) SetValue(obj *Object, value any) error {
	if err := f.checkTarget(obj); err != nil {
		return err
	}
	return obj.StoreField(f.slot, value)
}

func (f *FieldInfo) checkTarget(obj *Object) error {
	if obj == nil {
		return errors.NewInvocationError(f.declaring.name, f.name, "nil instance")
	}
	if obj.typ != f.declaring {
		return errors.NewInvocationError(f.declaring.name, f.name,
			fmt.Sprintf("instance of %s does not declare this field", obj.typ.name))
	}
	return nil
}

// PropertyInfo is a resolved property of a finalized type or contract
type PropertyInfo struct {
	name       string
	declaring  *Type
	typ        *Type
	attrs      PropertyAttributes
	getter     *MethodInfo
	setter     *MethodInfo
	attributes []Attribute
}

// Name returns the property name
func (p *PropertyInfo) Name() string { return p.name }

// Type returns the property type
func (p *PropertyInfo) Type() *Type { return p.typ }

// DeclaringType returns the type owning the property
func (p *PropertyInfo) DeclaringType() *Type { return p.declaring }

// GetMethod returns the getter, or nil when the property has none
func (p *PropertyInfo) GetMethod() *MethodInfo { return p.getter }

// SetMethod returns the setter, or nil when the property has none
func (p *PropertyInfo) SetMethod() *MethodInfo { return p.setter }

// CanRead reports whether the property has a getter
func (p *PropertyInfo) CanRead() bool { return p.getter != nil }

// CanWrite reports whether the property has a setter
func (p *PropertyInfo) CanWrite() bool { return p.setter != nil }

// PropertyAttributes returns the property slot attributes
func (p *PropertyInfo) PropertyAttributes() PropertyAttributes { return p.attrs }

// Attributes returns the attributes attached to the property, in attachment order
func (p *PropertyInfo) Attributes() []Attribute { return append([]Attribute(nil), p.attributes...) }

// Attribute returns the first attached attribute named name
func (p *PropertyInfo) Attribute(name string) (Attribute, bool) {
	return findAttribute(p.attributes, name)
}

// GetValue invokes the getter on obj
func (p *PropertyInfo) GetValue(obj *Object) (any, error) {
	if p.getter == nil {
		return nil, errors.NewInvocationError(p.declaring.name, p.name, "property has no getter")
	}
	return p.getter.Invoke(obj)
}

// SetValue invokes the setter on obj
func (p *PropertyInfo) SetValue(obj *Object, value any) error {
	if p.setter == nil {
		return errors.NewInvocationError(p.declaring.name, p.name, "property has no setter")
	}
	_, err := p.setter.Invoke(obj, value)
	return err
}

// MethodInfo is a resolved method of a finalized type or contract
type MethodInfo struct {
	name       string
	declaring  *Type
	attrs      MethodAttributes
	returnType *Type
	params     []*Type
	body       *emit.Body
	attributes []Attribute
}

// Name returns the method name
func (m *MethodInfo) Name() string { return m.name }

// DeclaringType returns the type owning the method
func (m *MethodInfo) DeclaringType() *Type { return m.declaring }

// MethodAttributes returns the method shape
func (m *MethodInfo) MethodAttributes() MethodAttributes { return m.attrs }

// ReturnType returns the result type, or nil for a method without result
func (m *MethodInfo) ReturnType() *Type { return m.returnType }

// Parameters returns the parameter types, receiver excluded
func (m *MethodInfo) Parameters() []*Type { return append([]*Type(nil), m.params...) }

// IsAbstract reports whether the method has no body
func (m *MethodInfo) IsAbstract() bool { return m.body == nil }

// IsVirtual reports whether the method may satisfy a contract
func (m *MethodInfo) IsVirtual() bool { return m.attrs.Has(MethodVirtual) }

// Attributes returns the attributes attached to the method
func (m *MethodInfo) Attributes() []Attribute { return append([]Attribute(nil), m.attributes...) }

// Disassemble returns the instruction listing of the body, or an empty string for abstract methods
func (m *MethodInfo) Disassemble() string {
	if m.body == nil {
		return ""
	}
	return m.body.String()
}

// Signature renders the method as name(params) result
func (m *MethodInfo) Signature() string {
	params := make([]string, len(m.params))
	for i, p := range m.params {
		params[i] = p.String()
	}
	sig := fmt.Sprintf("%s(%s)", m.name, strings.Join(params, ", "))
	if m.returnType != nil {
		sig += " " + m.returnType.String()
	}
	return sig
}

// Invoke calls the method on obj. Contract methods dispatch to the
// implementation registered on obj's type.
func (m *MethodInfo) Invoke(obj *Object, args ...any) (any, error) {
	if obj == nil {
		return nil, errors.NewInvocationError(m.declaring.name, m.name, "nil instance")
	}
	if m.body == nil {
		impl, ok := obj.typ.ImplementationOf(m)
		if !ok {
			return nil, errors.NewInvocationError(obj.typ.name, m.name,
				fmt.Sprintf("no implementation of %s.%s", m.declaring.name, m.name))
		}
		return impl.Invoke(obj, args...)
	}
	if obj.typ != m.declaring {
		return nil, errors.NewInvocationError(m.declaring.name, m.name,
			fmt.Sprintf("instance of %s does not declare this method", obj.typ.name))
	}
	if len(args) != len(m.params) {
		return nil, errors.NewInvocationError(m.declaring.name, m.name,
			fmt.Sprintf("expected %d arguments, got %d", len(m.params), len(args)))
	}
	for i, arg := range args {
		if !m.params[i].IsInstance(arg) {
			return nil, errors.NewInvocationError(m.declaring.name, m.name,
				fmt.Sprintf("argument %d: %T is not assignable to %s", i+1, arg, m.params[i]))
		}
	}

	frame := make([]any, 0, len(args)+1)
	frame = append(frame, obj)
	frame = append(frame, args...)
	result, err := m.body.Invoke(frame)
	if err != nil {
		if _, ok := err.(errors.SynthError); ok {
			return nil, err
		}
		return nil, errors.NewInvocationError(m.declaring.name, m.name, "call failed").WithCause(err)
	}
	return result, nil
}

package dyntypes

import (
	"fmt"
	"strings"

	"github.com/toyz/dyntypes/internal/errors"
)

// Object is an instance of a class type. Objects are not safe for concurrent mutation.
type Object struct {
	typ   *Type
	slots []any
}

// Type returns the class type of the instance
func (o *Object) Type() *Type { return o.typ }

// LoadField reads a storage slot
func (o *Object) LoadField(slot int) (any, error) {
	if slot < 0 || slot >= len(o.slots) {
		return nil, errors.NewInvocationError(o.typ.name, fmt.Sprintf("slot %d", slot), "no such field")
	}
	return o.slots[slot], nil
}

// StoreField writes a storage slot, rejecting values the field type cannot hold
func (o *Object) StoreField(slot int, value any) error {
	if slot < 0 || slot >= len(o.slots) {
		return errors.NewInvocationError(o.typ.name, fmt.Sprintf("slot %d", slot), "no such field")
	}
	f := o.typ.fields[slot]
	if !f.typ.IsInstance(value) {
		return errors.NewInvocationError(o.typ.name, f.name,
			fmt.Sprintf("cannot store %T in a field of type %s", value, f.typ))
	}
	o.slots[slot] = value
	return nil
}

// Get reads a readable property, or a public field
func (o *Object) Get(name string) (any, error) {
	if p, ok := o.typ.Property(name); ok {
		return p.GetValue(o)
	}
	if f, ok := o.typ.Field(name); ok && f.IsPublic() {
		return f.GetValue(o)
	}
	return nil, errors.NewResolutionError(o.typ.name, "readable member", name)
}

// Set writes a writable property, or a public field
func (o *Object) Set(name string, value any) error {
	if p, ok := o.typ.Property(name); ok {
		return p.SetValue(o, value)
	}
	if f, ok := o.typ.Field(name); ok && f.IsPublic() {
		return f.SetValue(o, value)
	}
	return errors.NewResolutionError(o.typ.name, "writable member", name)
}

// Call invokes a method of the instance
func (o *Object) Call(name string, args ...any) (any, error) {
	m, ok := o.typ.Method(name)
	if !ok {
		return nil, errors.NewResolutionError(o.typ.name, "method", name)
	}
	return m.Invoke(o, args...)
}

// CallInterface invokes method of contract, dispatching to the implementation of the instance's type
func (o *Object) CallInterface(contract *Type, method string, args ...any) (any, error) {
	if !o.typ.Implements(contract) {
		return nil, errors.NewInvocationError(o.typ.name, method,
			fmt.Sprintf("type does not implement %s", contract))
	}
	decl, ok := contract.Method(method)
	if !ok {
		return nil, errors.NewResolutionError(contract.name, "method", method)
	}
	return decl.Invoke(o, args...)
}

// String renders the instance with every field value
func (o *Object) String() string {
	parts := make([]string, len(o.slots))
	for i, f := range o.typ.fields {
		parts[i] = fmt.Sprintf("%s: %v", f.name, o.slots[i])
	}
	return fmt.Sprintf("%s{%s}", o.typ.name, strings.Join(parts, ", "))
}

// GetAs reads a member of obj and asserts its Go type
func GetAs[T any](obj *Object, name string) (T, error) {
	var zero T
	v, err := obj.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.NewInvocationError(obj.typ.name, name,
			fmt.Sprintf("value of type %T is not a %s", v, TypeOf[T]()))
	}
	return typed, nil
}

package dyntypes

import (
	"fmt"
	"reflect"

	"github.com/toyz/dyntypes/internal/errors"
)

// MethodGenerator emits a method with a caller supplied body. Without an
// Emitter the body returns the zero value of the return type.
type MethodGenerator struct {
	MemberBase

	// Parameters lists the parameter types, receiver excluded. Type is the
	// return type; nil declares a method without result.
	Parameters []*Type

	// Virtual lets the method satisfy a contract method by name and signature.
	Virtual bool

	// Emitter writes the body. Argument 0 is the receiver.
	Emitter func(il *ILGenerator)

	// CompiledMethod is nil until Compiled runs.
	CompiledMethod *MethodInfo

	builder *MethodBuilder
}

// NewMethodGenerator creates a method generator
func NewMethodGenerator(name string, ret *Type, params []*Type, emitter func(il *ILGenerator)) *MethodGenerator {
	return &MethodGenerator{
		MemberBase: MemberBase{Name: name, Type: ret},
		Parameters: params,
		Emitter:    emitter,
	}
}

// NewConstMethod creates a method without parameters returning value
func NewConstMethod(name string, value any) *MethodGenerator {
	ret := TypeOf[any]()
	if value != nil {
		ret = TypeFor(reflect.TypeOf(value))
	}
	return NewMethodGenerator(name, ret, nil, func(il *ILGenerator) {
		il.EmitConst(value)
		il.Emit(OpRet)
	})
}

// Builder returns the method under construction, nil before DefineMember
func (m *MethodGenerator) Builder() *MethodBuilder { return m.builder }

// DefineMember emits the method and registers it against the override targets
func (m *MethodGenerator) DefineMember(tb *TypeBuilder, _ *TypeGenerator) error {
	if m.IsDefinedOn(tb) {
		return nil
	}
	m.resetDefinition()
	m.builder = nil

	attrs := MethodPublic | MethodHideBySig
	if m.Virtual || m.overrides() {
		attrs |= MethodVirtual
	}
	mb, err := defineMethod(tb, m.Name, attrs, m.Type, m.Parameters, m.Attributes)
	if err != nil {
		return err
	}

	il := mb.ILGenerator()
	switch {
	case m.Emitter != nil:
		m.Emitter(il)
	case m.Type != nil:
		il.EmitConst(m.Type.Zero())
		il.Emit(OpRet)
	default:
		il.Emit(OpRet)
	}

	if err := registerMethodOverrides(tb, mb, m.Name, m.OverrideDefinitions); err != nil {
		return err
	}
	m.builder = mb
	m.MarkDefined(tb)
	return nil
}

// Compiled resolves CompiledMethod
func (m *MethodGenerator) Compiled(tg *TypeGenerator) error {
	method, err := resolveMethod(tg, m.Name)
	if err != nil {
		return err
	}
	m.CompiledMethod = method
	return nil
}

func (m *MethodGenerator) rollback(tb *TypeBuilder) {
	if m.CompiledMethod != nil && discarded(tb, m.CompiledMethod.DeclaringType()) {
		m.CompiledMethod = nil
	}
	if m.forget(tb) {
		m.builder = nil
	}
}

func defineMethod(tb *TypeBuilder, name string, attrs MethodAttributes, ret *Type, params []*Type, gens []*AttributeGenerator) (*MethodBuilder, error) {
	mb, err := tb.DefineMethod(name, attrs, ret, params)
	if err != nil {
		return nil, err
	}
	built, err := buildAttributes(gens)
	if err != nil {
		return nil, err
	}
	for _, a := range built {
		if err := mb.SetCustomAttribute(a); err != nil {
			return nil, err
		}
	}
	return mb, nil
}

func registerMethodOverrides(tb *TypeBuilder, mb *MethodBuilder, name string, targets []*Type) error {
	for _, contract := range targets {
		if contract == nil {
			continue
		}
		if contract.Kind() != KindContract {
			return errors.NewOverrideRegistrationError(contract.Name(), name,
				fmt.Sprintf("%s type is not a contract", contract.Kind()))
		}
		decl, ok := ContractMethod(contract, name)
		if !ok {
			return errors.NewOverrideRegistrationError(contract.Name(), name, "contract has no such method")
		}
		if err := tb.DefineMethodOverride(mb, decl); err != nil {
			return err
		}
	}
	return nil
}

func resolveMethod(tg *TypeGenerator, name string) (*MethodInfo, error) {
	t, err := tg.Type()
	if err != nil {
		return nil, err
	}
	method, ok := t.Method(name)
	if !ok {
		return nil, errors.NewResolutionError(t.Name(), "method", name)
	}
	return method, nil
}

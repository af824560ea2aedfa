package dyntypes

import (
	"fmt"

	"github.com/toyz/dyntypes/internal/errors"
)

// PropertyGenerator synthesizes a property made of a backing field and
// trivial pass-through accessors.
type PropertyGenerator struct {
	MemberBase

	// PropertyName is the visible property name.
	PropertyName string

	// BackingField holds the property value. It is named BackingFieldName(PropertyName).
	BackingField *FieldGenerator

	// Get and Set select the accessors to emit. Both default to true.
	Get bool
	Set bool

	// CompiledProperty and CompiledField are nil until Compiled runs.
	CompiledProperty *PropertyInfo
	CompiledField    *FieldInfo

	builder *PropertyBuilder
}

// NewPropertyGenerator creates a read-write property named name of type typ
func NewPropertyGenerator(name string, typ *Type) (*PropertyGenerator, error) {
	if typ == nil {
		return nil, errors.NewValidationError(name, "property type", "nil").
			WithSuggestion("Use NewPropertyOf or NewPropertyFrom to infer the type")
	}
	return newProperty(name, typ), nil
}

// NewPropertyOf creates a read-write property of Go type T
func NewPropertyOf[T any](name string) *PropertyGenerator {
	return newProperty(name, TypeOf[T]())
}

// NewPropertyFrom creates a property implementing the property name of
// contract. Type and accessors mirror the contract property.
func NewPropertyFrom(contract *Type, name string) (*PropertyGenerator, error) {
	if contract == nil {
		return nil, errors.NewValidationError("contract", "contract type", "nil")
	}
	if contract.Kind() != KindContract {
		return nil, errors.NewValidationError("contract", "contract type", contract.String())
	}
	cp, ok := contract.Property(name)
	if !ok {
		return nil, errors.NewContractMismatchError(contract.Name(), name, contract.PropertyNames())
	}

	p := newProperty(name, cp.Type())
	p.SetOverrideDefinition(contract)
	p.Get = cp.CanRead()
	p.Set = cp.CanWrite()
	return p, nil
}

// NewPropertyFor creates a property implementing the property name of the Go interface T
func NewPropertyFor[T any](name string) (*PropertyGenerator, error) {
	contract, err := ContractOf[T]()
	if err != nil {
		return nil, err
	}
	return NewPropertyFrom(contract, name)
}

func newProperty(name string, typ *Type) *PropertyGenerator {
	return &PropertyGenerator{
		MemberBase:   MemberBase{Name: name, Type: typ},
		PropertyName: name,
		BackingField: &FieldGenerator{MemberBase: MemberBase{Name: BackingFieldName(name), Type: typ}},
		Get:          true,
		Set:          true,
	}
}

// Builder returns the property under construction, nil before DefineMember
func (p *PropertyGenerator) Builder() *PropertyBuilder { return p.builder }

// DefineMember emits the backing field, the property slot and the enabled accessors
func (p *PropertyGenerator) DefineMember(tb *TypeBuilder, tg *TypeGenerator) error {
	if p.IsDefinedOn(tb) {
		return nil
	}
	p.resetDefinition()
	p.builder = nil

	switch {
	case p.Type == nil:
		return errors.NewDefinitionError(tb.Name(), p.PropertyName, "property type is nil")
	case !p.BackingField.IsDefinedOn(tb):
		p.BackingField.Type = p.Type
	case p.BackingField.Type != p.Type:
		return errors.NewDefinitionError(tb.Name(), p.PropertyName,
			fmt.Sprintf("property type %s differs from backing field type %s", p.Type, p.BackingField.Type))
	}
	if err := p.BackingField.DefineMember(tb, tg); err != nil {
		return err
	}
	pb, err := definePropertySlot(tb, p.PropertyName, p.Type, p.Attributes)
	if err != nil {
		return err
	}
	accessors := accessorSpec{
		property: pb,
		field:    p.BackingField.Builder(),
		get:      p.Get,
		set:      p.Set,
		attrs:    p.accessorAttributes(),
		targets:  p.OverrideDefinitions,
	}
	if err := accessors.define(tb); err != nil {
		return err
	}

	p.builder = pb
	p.MarkDefined(tb)
	return nil
}

// Compiled resolves CompiledProperty and CompiledField
func (p *PropertyGenerator) Compiled(tg *TypeGenerator) error {
	t, err := tg.Type()
	if err != nil {
		return err
	}
	prop, ok := t.Property(p.PropertyName)
	if !ok {
		return errors.NewResolutionError(t.Name(), "property", p.PropertyName)
	}
	if err := p.BackingField.Compiled(tg); err != nil {
		return err
	}
	p.CompiledProperty = prop
	p.CompiledField = p.BackingField.Field
	return p.MemberBase.Compiled(tg)
}

func (p *PropertyGenerator) rollback(tb *TypeBuilder) {
	if p.CompiledProperty != nil && discarded(tb, p.CompiledProperty.DeclaringType()) {
		p.CompiledProperty = nil
		p.CompiledField = nil
	}
	if p.forget(tb) {
		p.builder = nil
	}
	if p.BackingField != nil {
		p.BackingField.rollback(tb)
	}
}

func definePropertySlot(tb *TypeBuilder, name string, typ *Type, attrs []*AttributeGenerator) (*PropertyBuilder, error) {
	pb, err := tb.DefineProperty(name, PropertyNone, typ)
	if err != nil {
		return nil, err
	}
	built, err := buildAttributes(attrs)
	if err != nil {
		return nil, err
	}
	for _, a := range built {
		if err := pb.SetCustomAttribute(a); err != nil {
			return nil, err
		}
	}
	return pb, nil
}

// accessorSpec describes the trivial accessors of a property stored in field
type accessorSpec struct {
	property *PropertyBuilder
	field    *FieldBuilder
	get      bool
	set      bool
	attrs    MethodAttributes
	targets  []*Type
}

func (a accessorSpec) define(tb *TypeBuilder) error {
	name := a.property.Name()
	typ := a.property.Type()

	if a.get {
		getter, err := tb.DefineMethod(GetterName(name), a.attrs, typ, nil)
		if err != nil {
			return err
		}
		il := getter.ILGenerator()
		il.EmitArg(0)
		il.EmitField(OpLdFld, a.field)
		il.Emit(OpRet)
		if err := a.register(tb, getter, (*PropertyInfo).GetMethod); err != nil {
			return err
		}
		if err := a.property.SetGetMethod(getter); err != nil {
			return err
		}
	}

	if a.set {
		setter, err := tb.DefineMethod(SetterName(name), a.attrs, nil, []*Type{typ})
		if err != nil {
			return err
		}
		il := setter.ILGenerator()
		il.EmitArg(0)
		il.EmitArg(1)
		il.EmitField(OpStFld, a.field)
		il.Emit(OpRet)
		if err := a.register(tb, setter, (*PropertyInfo).SetMethod); err != nil {
			return err
		}
		if err := a.property.SetSetMethod(setter); err != nil {
			return err
		}
	}
	return nil
}

// register binds accessor to the matching accessor of every override target
func (a accessorSpec) register(tb *TypeBuilder, accessor *MethodBuilder, slot func(*PropertyInfo) *MethodInfo) error {
	name := a.property.Name()
	for _, contract := range a.targets {
		if contract == nil {
			continue
		}
		if contract.Kind() != KindContract {
			return errors.NewOverrideRegistrationError(contract.Name(), name,
				fmt.Sprintf("%s type is not a contract", contract.Kind()))
		}
		cp, ok := contract.Property(name)
		if !ok {
			return errors.NewOverrideRegistrationError(contract.Name(), name, "contract has no such property")
		}
		decl := slot(cp)
		if decl == nil {
			return errors.NewOverrideRegistrationError(contract.Name(), name,
				fmt.Sprintf("contract declares no accessor matching '%s'", accessor.Name())).
				WithSuggestion("Disable the accessor or add it to the contract")
		}
		if err := tb.DefineMethodOverride(accessor, decl); err != nil {
			return err
		}
	}
	return nil
}

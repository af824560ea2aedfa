package dyntypes

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/toyz/dyntypes/internal/annotations"
	"github.com/toyz/dyntypes/internal/emit"
	"github.com/toyz/dyntypes/internal/errors"
)

// TypeBuilder is a type under construction. It is owned by a single
// compilation and is not safe for concurrent use. CreateType seals it.
type TypeBuilder struct {
	name       string
	id         uuid.UUID
	fields     []*FieldBuilder
	properties []*PropertyBuilder
	methods    []*MethodBuilder
	members    map[string]string // member name -> kind
	interfaces []*Type
	overrides  []methodOverride
	attributes []Attribute
	created    *Type
}

type methodOverride struct {
	body *MethodBuilder
	decl *MethodInfo
}

// NewTypeBuilder opens a new class type named name
func NewTypeBuilder(name string) (*TypeBuilder, error) {
	if !IsIdentifier(name) {
		return nil, errors.NewValidationError("type name", "identifier", fmt.Sprintf("'%s'", name))
	}
	return &TypeBuilder{
		name:    name,
		id:      uuid.New(),
		members: make(map[string]string),
	}, nil
}

// Name returns the name of the type under construction
func (tb *TypeBuilder) Name() string { return tb.name }

// IsCreated reports whether CreateType has succeeded
func (tb *TypeBuilder) IsCreated() bool { return tb.created != nil }

// Field looks up a field defined so far
func (tb *TypeBuilder) Field(name string) (*FieldBuilder, bool) {
	for _, f := range tb.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// DefineField adds a storage slot
func (tb *TypeBuilder) DefineField(name string, typ *Type, attrs FieldAttributes) (*FieldBuilder, error) {
	if err := tb.checkDefine(name, "field", isMemberName(name), typ, true); err != nil {
		return nil, err
	}
	f := &FieldBuilder{owner: tb, name: name, typ: typ, attrs: attrs, slot: len(tb.fields)}
	tb.fields = append(tb.fields, f)
	tb.members[name] = "field"
	return f, nil
}

// DefineProperty declares a property slot. Accessors are attached with
// SetGetMethod and SetSetMethod.
func (tb *TypeBuilder) DefineProperty(name string, attrs PropertyAttributes, typ *Type) (*PropertyBuilder, error) {
	if err := tb.checkDefine(name, "property", IsIdentifier(name), typ, true); err != nil {
		return nil, err
	}
	p := &PropertyBuilder{owner: tb, name: name, typ: typ, attrs: attrs}
	tb.properties = append(tb.properties, p)
	tb.members[name] = "property"
	return p, nil
}

// DefineMethod declares a method. A nil ret declares a method without result.
func (tb *TypeBuilder) DefineMethod(name string, attrs MethodAttributes, ret *Type, params []*Type) (*MethodBuilder, error) {
	if err := tb.checkDefine(name, "method", IsIdentifier(name), nil, false); err != nil {
		return nil, err
	}
	if attrs.Has(MethodAbstract) {
		return nil, errors.NewDefinitionError(tb.name, name, "class types cannot declare abstract methods")
	}
	for i, p := range params {
		if p == nil {
			return nil, errors.NewDefinitionError(tb.name, name, fmt.Sprintf("parameter %d has no type", i+1))
		}
	}
	m := &MethodBuilder{
		owner:  tb,
		name:   name,
		attrs:  attrs,
		ret:    ret,
		params: append([]*Type(nil), params...),
		il:     emit.NewILGenerator(),
	}
	tb.methods = append(tb.methods, m)
	tb.members[name] = "method"
	return m, nil
}

// DefineMethodOverride registers body as the implementation of the contract
// method decl. The contract is added to the implemented interfaces.
func (tb *TypeBuilder) DefineMethodOverride(body *MethodBuilder, decl *MethodInfo) error {
	if tb.created != nil {
		return errors.NewTypeSealedError(tb.name, "override")
	}
	if body == nil || decl == nil {
		return errors.NewDefinitionError(tb.name, "override", "method and declaration are required")
	}
	contract := decl.declaring
	if contract == nil || contract.kind != KindContract {
		return errors.NewOverrideRegistrationError(decl.declaring.String(), decl.name, "declaring type is not a contract")
	}
	if body.owner != tb {
		return errors.NewOverrideRegistrationError(contract.name, decl.name,
			fmt.Sprintf("method '%s' belongs to another type", body.name))
	}
	if !body.attrs.Has(MethodVirtual) {
		return errors.NewOverrideRegistrationError(contract.name, decl.name,
			fmt.Sprintf("method '%s' is not virtual", body.name))
	}
	if !sameSignature(body.ret, body.params, decl.returnType, decl.params) {
		return errors.NewOverrideRegistrationError(contract.name, decl.name,
			fmt.Sprintf("signature of '%s' does not match %s", body.name, decl.Signature()))
	}
	for _, o := range tb.overrides {
		if o.decl == decl {
			return errors.NewOverrideRegistrationError(contract.name, decl.name,
				fmt.Sprintf("already implemented by '%s'", o.body.name))
		}
	}
	tb.overrides = append(tb.overrides, methodOverride{body: body, decl: decl})
	return tb.AddInterfaceImplementation(contract)
}

// AddInterfaceImplementation declares that the type implements contract.
// Adding the same contract twice has no effect.
func (tb *TypeBuilder) AddInterfaceImplementation(contract *Type) error {
	if tb.created != nil {
		return errors.NewTypeSealedError(tb.name, "interface")
	}
	if contract == nil || contract.kind != KindContract {
		return errors.NewDefinitionError(tb.name, contract.String(), "only contracts can be implemented")
	}
	for _, iface := range tb.interfaces {
		if iface == contract {
			return nil
		}
	}
	tb.interfaces = append(tb.interfaces, contract)
	return nil
}

// SetCustomAttribute attaches attr to the type
func (tb *TypeBuilder) SetCustomAttribute(attr Attribute) error {
	if tb.created != nil {
		return errors.NewTypeSealedError(tb.name, "@"+attr.name)
	}
	if err := attr.checkTarget(annotations.TargetType); err != nil {
		return err
	}
	tb.attributes = append(tb.attributes, attr)
	return nil
}

func (tb *TypeBuilder) checkDefine(name, kind string, validName bool, typ *Type, typed bool) error {
	if tb.created != nil {
		return errors.NewTypeSealedError(tb.name, name)
	}
	if !validName {
		return errors.NewDefinitionError(tb.name, name, fmt.Sprintf("invalid %s name", kind))
	}
	if existing, ok := tb.members[name]; ok {
		return errors.NewDefinitionError(tb.name, name, fmt.Sprintf("a %s with this name is already defined", existing)).
			WithSuggestion("Member names share one namespace per type")
	}
	if typed && typ == nil {
		return errors.NewDefinitionError(tb.name, name, fmt.Sprintf("%s type is required", kind))
	}
	return nil
}

// CreateType finalizes the type. On success the builder is sealed; on failure
// nothing is exposed and every problem found is reported.
func (tb *TypeBuilder) CreateType() (*Type, error) {
	if tb.created != nil {
		return nil, errors.NewTypeSealedError(tb.name, "CreateType")
	}

	var errs *errors.MultipleErrors
	t := &Type{
		name:       tb.name,
		id:         tb.id,
		kind:       KindClass,
		interfaces: append([]*Type(nil), tb.interfaces...),
		impls:      make(map[*MethodInfo]*MethodInfo),
		attributes: append([]Attribute(nil), tb.attributes...),
	}

	for _, f := range tb.fields {
		t.fields = append(t.fields, &FieldInfo{
			name:       f.name,
			declaring:  t,
			typ:        f.typ,
			slot:       f.slot,
			attrs:      f.attrs,
			attributes: append([]Attribute(nil), f.attributes...),
		})
	}

	resolved := make(map[*MethodBuilder]*MethodInfo, len(tb.methods))
	failed := make(map[string]bool)
	for _, m := range tb.methods {
		body, err := m.il.Body(len(m.params), m.ret != nil)
		if err != nil {
			errors.AddToMultiple(&errs, errors.WrapEmissionError(m.name, err).WithContext("type", tb.name))
			failed[m.name] = true
			continue
		}
		info := &MethodInfo{
			name:       m.name,
			declaring:  t,
			attrs:      m.attrs,
			returnType: m.ret,
			params:     m.params,
			body:       body,
			attributes: append([]Attribute(nil), m.attributes...),
		}
		resolved[m] = info
		t.methods = append(t.methods, info)
	}

	for _, p := range tb.properties {
		t.properties = append(t.properties, &PropertyInfo{
			name:       p.name,
			declaring:  t,
			typ:        p.typ,
			attrs:      p.attrs,
			getter:     resolved[p.getter],
			setter:     resolved[p.setter],
			attributes: append([]Attribute(nil), p.attributes...),
		})
	}

	for _, o := range tb.overrides {
		if impl, ok := resolved[o.body]; ok {
			t.impls[o.decl] = impl
		}
	}
	for _, contract := range tb.interfaces {
		for _, decl := range contract.methods {
			if _, ok := t.impls[decl]; ok {
				continue
			}
			if impl, ok := t.Method(decl.name); ok && impl.IsVirtual() &&
				sameSignature(impl.returnType, impl.params, decl.returnType, decl.params) {
				t.impls[decl] = impl
				continue
			}
			if failed[decl.name] {
				continue
			}
			errors.AddToMultiple(&errs, errors.NewOverrideRegistrationError(contract.name, decl.name,
				fmt.Sprintf("not implemented by '%s'", tb.name)).
				WithType(tb.name).
				WithSuggestion(fmt.Sprintf("Define a virtual method %s", decl.Signature())))
		}
	}

	if errs != nil {
		return nil, errs.ErrOrNil()
	}
	tb.created = t
	return t, nil
}

// FieldBuilder is a field of a type under construction
type FieldBuilder struct {
	owner      *TypeBuilder
	name       string
	typ        *Type
	attrs      FieldAttributes
	slot       int
	attributes []Attribute
}

// Name returns the field name
func (f *FieldBuilder) Name() string { return f.name }

// Type returns the field type
func (f *FieldBuilder) Type() *Type { return f.typ }

// Slot returns the storage index of the field
func (f *FieldBuilder) Slot() int { return f.slot }

// SetCustomAttribute attaches attr to the field
func (f *FieldBuilder) SetCustomAttribute(attr Attribute) error {
	if f.owner.created != nil {
		return errors.NewTypeSealedError(f.owner.name, f.name)
	}
	if err := attr.checkTarget(annotations.TargetField); err != nil {
		return err
	}
	f.attributes = append(f.attributes, attr)
	return nil
}

// PropertyBuilder is a property slot of a type under construction
type PropertyBuilder struct {
	owner      *TypeBuilder
	name       string
	typ        *Type
	attrs      PropertyAttributes
	getter     *MethodBuilder
	setter     *MethodBuilder
	attributes []Attribute
}

// Name returns the property name
func (p *PropertyBuilder) Name() string { return p.name }

// Type returns the property type
func (p *PropertyBuilder) Type() *Type { return p.typ }

// SetGetMethod designates m as the getter. m must take no arguments and return the property type.
func (p *PropertyBuilder) SetGetMethod(m *MethodBuilder) error {
	if err := p.checkAccessor(m); err != nil {
		return err
	}
	if !sameSignature(m.ret, m.params, p.typ, nil) {
		return errors.NewDefinitionError(p.owner.name, p.name,
			fmt.Sprintf("getter '%s' must be %s() %s", m.name, m.name, p.typ))
	}
	p.getter = m
	return nil
}

// SetSetMethod designates m as the setter. m must take one argument of the property type and return nothing.
func (p *PropertyBuilder) SetSetMethod(m *MethodBuilder) error {
	if err := p.checkAccessor(m); err != nil {
		return err
	}
	if !sameSignature(m.ret, m.params, nil, []*Type{p.typ}) {
		return errors.NewDefinitionError(p.owner.name, p.name,
			fmt.Sprintf("setter '%s' must be %s(%s)", m.name, m.name, p.typ))
	}
	p.setter = m
	return nil
}

// SetCustomAttribute attaches attr to the property
func (p *PropertyBuilder) SetCustomAttribute(attr Attribute) error {
	if p.owner.created != nil {
		return errors.NewTypeSealedError(p.owner.name, p.name)
	}
	if err := attr.checkTarget(annotations.TargetProperty); err != nil {
		return err
	}
	p.attributes = append(p.attributes, attr)
	return nil
}

func (p *PropertyBuilder) checkAccessor(m *MethodBuilder) error {
	if p.owner.created != nil {
		return errors.NewTypeSealedError(p.owner.name, p.name)
	}
	if m == nil || m.owner != p.owner {
		return errors.NewDefinitionError(p.owner.name, p.name, "accessor must be a method of the same type")
	}
	return nil
}

// MethodBuilder is a method of a type under construction
type MethodBuilder struct {
	owner      *TypeBuilder
	name       string
	attrs      MethodAttributes
	ret        *Type
	params     []*Type
	il         *emit.ILGenerator
	attributes []Attribute
}

// Name returns the method name
func (m *MethodBuilder) Name() string { return m.name }

// Attributes returns the method shape
func (m *MethodBuilder) Attributes() MethodAttributes { return m.attrs }

// ILGenerator returns the generator of the method body. Argument 0 is the receiver.
func (m *MethodBuilder) ILGenerator() *ILGenerator { return m.il }

// SetCustomAttribute attaches attr to the method
func (m *MethodBuilder) SetCustomAttribute(attr Attribute) error {
	if m.owner.created != nil {
		return errors.NewTypeSealedError(m.owner.name, m.name)
	}
	if err := attr.checkTarget(annotations.TargetMethod); err != nil {
		return err
	}
	m.attributes = append(m.attributes, attr)
	return nil
}

package dyntypes

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/toyz/dyntypes/internal/errors"
)

// Access selects the accessors a contract property declares
type Access int

const (
	AccessGet Access = 1 << iota
	AccessSet

	AccessGetSet = AccessGet | AccessSet
)

const (
	contractAccessorAttributes = AccessorAttributes | MethodVirtual | MethodAbstract
	contractMethodAttributes   = MethodPublic | MethodHideBySig | MethodVirtual | MethodAbstract
)

type contractProperty struct {
	name   string
	typ    *Type
	access Access
}

type contractMethod struct {
	name   string
	ret    *Type
	params []*Type
}

// ContractBuilder declares a contract type: a set of abstract properties and
// methods a class type can implement.
type ContractBuilder struct {
	name       string
	goType     reflect.Type
	properties []contractProperty
	methods    []contractMethod
	names      map[string]bool
	errs       *errors.MultipleErrors
}

// NewContract starts the declaration of a contract named name
func NewContract(name string) *ContractBuilder {
	c := &ContractBuilder{name: name, names: make(map[string]bool)}
	if !IsIdentifier(name) {
		c.fail(errors.NewValidationError("contract name", "identifier", fmt.Sprintf("'%s'", name)))
	}
	return c
}

// Property declares a property with the given accessors
func (c *ContractBuilder) Property(name string, typ *Type, access Access) *ContractBuilder {
	switch {
	case !IsIdentifier(name):
		c.fail(errors.NewDefinitionError(c.name, name, "not a valid identifier"))
	case typ == nil:
		c.fail(errors.NewDefinitionError(c.name, name, "property type is required"))
	case access&AccessGetSet == 0:
		c.fail(errors.NewDefinitionError(c.name, name, "property declares no accessor"))
	default:
		if c.claim(name) && c.claim(GetterName(name)) && c.claim(SetterName(name)) {
			c.properties = append(c.properties, contractProperty{name: name, typ: typ, access: access})
		}
	}
	return c
}

// Method declares an abstract method. A nil ret declares a method without result.
func (c *ContractBuilder) Method(name string, ret *Type, params ...*Type) *ContractBuilder {
	if !IsIdentifier(name) {
		c.fail(errors.NewDefinitionError(c.name, name, "not a valid identifier"))
		return c
	}
	for i, p := range params {
		if p == nil {
			c.fail(errors.NewDefinitionError(c.name, name, fmt.Sprintf("parameter %d has no type", i+1)))
			return c
		}
	}
	if c.claim(name) {
		c.methods = append(c.methods, contractMethod{name: name, ret: ret, params: params})
	}
	return c
}

// Build finalizes the contract
func (c *ContractBuilder) Build() (*Type, error) {
	if c.errs != nil {
		return nil, c.errs.ErrOrNil()
	}

	t := &Type{
		name:   c.name,
		id:     uuid.New(),
		kind:   KindContract,
		goType: c.goType,
	}
	for _, p := range c.properties {
		prop := &PropertyInfo{name: p.name, declaring: t, typ: p.typ}
		if p.access&AccessGet != 0 {
			prop.getter = &MethodInfo{
				name:       GetterName(p.name),
				declaring:  t,
				attrs:      contractAccessorAttributes,
				returnType: p.typ,
			}
			t.methods = append(t.methods, prop.getter)
		}
		if p.access&AccessSet != 0 {
			prop.setter = &MethodInfo{
				name:      SetterName(p.name),
				declaring: t,
				attrs:     contractAccessorAttributes,
				params:    []*Type{p.typ},
			}
			t.methods = append(t.methods, prop.setter)
		}
		t.properties = append(t.properties, prop)
	}
	for _, m := range c.methods {
		t.methods = append(t.methods, &MethodInfo{
			name:       m.name,
			declaring:  t,
			attrs:      contractMethodAttributes,
			returnType: m.ret,
			params:     append([]*Type(nil), m.params...),
		})
	}
	return t, nil
}

// MustBuild is like Build but panics on error
func (c *ContractBuilder) MustBuild() *Type {
	t, err := c.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (c *ContractBuilder) claim(name string) bool {
	if c.names[name] {
		c.fail(errors.NewDefinitionError(c.name, name, "duplicate member name"))
		return false
	}
	c.names[name] = true
	return true
}

func (c *ContractBuilder) fail(err errors.SynthError) {
	errors.AddToMultiple(&c.errs, err)
}

var contracts sync.Map // reflect.Type -> *Type

// ContractOf lifts the Go interface T into a contract. A method X() R becomes
// the getter of property X, SetX(R) its setter, and every other method an
// abstract method with the same signature.
func ContractOf[T any]() (*Type, error) {
	return ContractFor(reflect.TypeOf((*T)(nil)).Elem())
}

// ContractFor is the reflect.Type form of ContractOf
func ContractFor(rt reflect.Type) (*Type, error) {
	if rt == nil || rt.Kind() != reflect.Interface {
		return nil, errors.NewValidationError("contract", "interface type", fmt.Sprint(rt))
	}
	if t, ok := contracts.Load(rt); ok {
		return t.(*Type), nil
	}

	c := NewContract(contractName(rt))
	c.goType = rt

	getters := make(map[string]reflect.Type)
	setters := make(map[string]reflect.Type)
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		switch {
		case m.Type.NumIn() == 0 && m.Type.NumOut() == 1:
			getters[m.Name] = m.Type.Out(0)
		case strings.HasPrefix(m.Name, "Set") && len(m.Name) > 3 && m.Type.NumIn() == 1 && m.Type.NumOut() == 0:
			setters[m.Name[3:]] = m.Type.In(0)
		}
	}

	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if typ, ok := getters[m.Name]; ok {
			access := AccessGet
			if st, ok := setters[m.Name]; ok && st == typ {
				access |= AccessSet
			}
			c.Property(m.Name, TypeFor(typ), access)
			continue
		}
		if strings.HasPrefix(m.Name, "Set") {
			if typ, ok := setters[m.Name[3:]]; ok {
				gt, hasGetter := getters[m.Name[3:]]
				if hasGetter && gt == typ {
					continue
				}
				if !hasGetter {
					c.Property(m.Name[3:], TypeFor(typ), AccessSet)
					continue
				}
			}
		}
		if m.Type.IsVariadic() || m.Type.NumOut() > 1 {
			c.fail(errors.NewDefinitionError(c.name, m.Name, "variadic and multi-result methods cannot be lifted"))
			continue
		}
		params := make([]*Type, m.Type.NumIn())
		for j := range params {
			params[j] = TypeFor(m.Type.In(j))
		}
		var ret *Type
		if m.Type.NumOut() == 1 {
			ret = TypeFor(m.Type.Out(0))
		}
		c.Method(m.Name, ret, params...)
	}

	t, err := c.Build()
	if err != nil {
		return nil, err
	}
	actual, _ := contracts.LoadOrStore(rt, t)
	return actual.(*Type), nil
}

// ContractMethod resolves a Go style method name against contract: a declared
// method first, then the getter of a property of that name, then the setter
// of property X for SetX.
func ContractMethod(contract *Type, name string) (*MethodInfo, bool) {
	if m, ok := contract.Method(name); ok {
		return m, true
	}
	if p, ok := contract.Property(name); ok && p.getter != nil {
		return p.getter, true
	}
	if strings.HasPrefix(name, "Set") {
		if p, ok := contract.Property(name[3:]); ok && p.setter != nil {
			return p.setter, true
		}
	}
	return nil, false
}

func contractName(rt reflect.Type) string {
	name := rt.Name()
	if name == "" {
		return "Contract"
	}
	return name
}

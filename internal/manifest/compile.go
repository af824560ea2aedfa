package manifest

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toyz/dyntypes/internal/annotations"
	"github.com/toyz/dyntypes/internal/errors"
	"github.com/toyz/dyntypes/pkg/dyntypes"
)

// Options controls manifest compilation
type Options struct {
	// StrictAttributes rejects attributes that have no registered schema.
	StrictAttributes bool

	// Diagnostics receives compilation progress. Nil is silent.
	Diagnostics dyntypes.Reporter
}

// Result holds everything a manifest produced, in declaration order
type Result struct {
	Contracts  []*dyntypes.Type
	Types      []*dyntypes.Type
	Generators []*dyntypes.TypeGenerator
}

// Type looks up a compiled class type by name
func (r *Result) Type(name string) (*dyntypes.Type, bool) {
	for _, t := range r.Types {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Compile declares the contracts and compiles the types of m in order. A type
// may reference contracts and the types declared before it. Every failure is
// reported; a type that fails is skipped and the remaining ones are still
// compiled.
func Compile(m *Manifest, opts Options) (*Result, error) {
	var errs *errors.MultipleErrors
	scope := newTypeScope()
	result := &Result{}

	for i := range m.Contracts {
		spec := &m.Contracts[i]
		contract, err := buildContract(spec, scope)
		if err == nil {
			err = scope.declare(contract)
		}
		if err != nil {
			errors.AddToMultiple(&errs, wrapAt(m.File, spec.pos, fmt.Sprintf("contract '%s'", spec.Name), err))
			continue
		}
		result.Contracts = append(result.Contracts, contract)
	}

	for i := range m.Types {
		spec := &m.Types[i]
		c := &typeCompiler{file: m.File, spec: spec, scope: scope, opts: opts}
		tg, failed := c.generator()
		if failed != nil {
			for _, err := range failed.Errors {
				errors.AddToMultiple(&errs, err)
			}
			continue
		}
		t, err := tg.Compile()
		if err == nil {
			err = scope.declare(t)
		}
		if err != nil {
			errors.AddToMultiple(&errs, wrapAt(m.File, spec.pos, fmt.Sprintf("type '%s'", spec.Name), err))
			continue
		}
		result.Types = append(result.Types, t)
		result.Generators = append(result.Generators, tg)
	}

	if errs != nil {
		return result, errs.ErrOrNil()
	}
	return result, nil
}

// LoadAndCompile reads the manifest at path and compiles it
func LoadAndCompile(path string, opts Options) (*Result, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(m, opts)
}

func buildContract(spec *ContractSpec, scope *typeScope) (*dyntypes.Type, error) {
	b := dyntypes.NewContract(spec.Name)
	for _, p := range spec.Properties {
		typ, err := scope.resolve(p.Type)
		if err != nil {
			return nil, fmt.Errorf("property '%s': %w", p.Name, err)
		}
		get, set, err := parseAccess(p.Access)
		if err != nil {
			return nil, fmt.Errorf("property '%s': %w", p.Name, err)
		}
		b.Property(p.Name, typ, accessOf(get, set))
	}
	for _, method := range spec.Methods {
		var ret *dyntypes.Type
		if method.Returns != "" {
			t, err := scope.resolve(method.Returns)
			if err != nil {
				return nil, fmt.Errorf("method '%s': %w", method.Name, err)
			}
			ret = t
		}
		params := make([]*dyntypes.Type, len(method.Params))
		for i, expr := range method.Params {
			t, err := scope.resolve(expr)
			if err != nil {
				return nil, fmt.Errorf("method '%s' parameter %d: %w", method.Name, i+1, err)
			}
			params[i] = t
		}
		b.Method(method.Name, ret, params...)
	}
	return b.Build()
}

type typeCompiler struct {
	file  string
	spec  *TypeSpec
	scope *typeScope
	opts  Options

	// named holds the generators of the members declared so far, by member name.
	named map[string]dyntypes.MemberGenerator
	errs  *errors.MultipleErrors
}

// generator translates the type spec. All member problems are collected.
func (c *typeCompiler) generator() (*dyntypes.TypeGenerator, *errors.MultipleErrors) {
	c.named = make(map[string]dyntypes.MemberGenerator)
	tg := dyntypes.NewTypeGenerator(c.spec.Name)
	tg.Diagnostics = c.opts.Diagnostics

	for _, name := range c.spec.Implements {
		contract, err := c.scope.contract(name)
		if err != nil {
			c.fail(c.spec.pos, "implements", err)
			continue
		}
		tg.Implement(contract)
	}
	for _, text := range c.spec.Attributes {
		attr, err := c.attribute(text, c.spec.pos)
		if err != nil {
			c.fail(c.spec.pos, "attributes", err)
			continue
		}
		tg.Attributes = append(tg.Attributes, attr)
	}

	for i := range c.spec.Members {
		spec := &c.spec.Members[i]
		member, err := c.member(spec)
		if err != nil {
			c.fail(spec.pos, fmt.Sprintf("%s '%s'", spec.Kind, spec.Name), err)
			continue
		}
		if _, dup := c.named[spec.Name]; dup {
			c.fail(spec.pos, fmt.Sprintf("%s '%s'", spec.Kind, spec.Name),
				fmt.Errorf("member '%s' is declared twice", spec.Name))
			continue
		}
		c.named[spec.Name] = member
		tg.Add(member)
	}

	if c.errs != nil {
		return nil, c.errs
	}
	return tg, nil
}

func (c *typeCompiler) fail(pos position, what string, err error) {
	errors.AddToMultiple(&c.errs, wrapAt(c.file, pos, fmt.Sprintf("type '%s' %s", c.spec.Name, what), err))
}

func (c *typeCompiler) member(spec *MemberSpec) (dyntypes.MemberGenerator, error) {
	var (
		member dyntypes.MemberGenerator
		base   *dyntypes.MemberBase
		err    error
	)
	switch strings.ToLower(spec.Kind) {
	case KindProperty:
		var p *dyntypes.PropertyGenerator
		p, err = c.property(spec)
		if p != nil {
			member, base = p, &p.MemberBase
		}
	case KindField:
		var f *dyntypes.FieldGenerator
		f, err = c.field(spec)
		if f != nil {
			member, base = f, &f.MemberBase
		}
	case KindRedirect:
		var r *dyntypes.RedirectPropertyGenerator
		r, err = c.redirect(spec)
		if r != nil {
			member, base = r, &r.MemberBase
		}
	case KindMethod:
		var m *dyntypes.MethodGenerator
		m, err = c.method(spec)
		if m != nil {
			member, base = m, &m.MemberBase
		}
	default:
		return nil, fmt.Errorf("unknown member kind '%s' (want %s, %s, %s or %s)",
			spec.Kind, KindProperty, KindField, KindRedirect, KindMethod)
	}
	if err != nil {
		return nil, err
	}

	for _, text := range spec.Attributes {
		attr, err := c.attribute(text, spec.pos)
		if err != nil {
			return nil, err
		}
		base.AddAttribute(attr)
	}
	return member, nil
}

func (c *typeCompiler) property(spec *MemberSpec) (*dyntypes.PropertyGenerator, error) {
	var p *dyntypes.PropertyGenerator
	if spec.Contract != "" {
		contract, err := c.scope.contract(spec.Contract)
		if err != nil {
			return nil, err
		}
		if p, err = dyntypes.NewPropertyFrom(contract, spec.Name); err != nil {
			return nil, err
		}
		if spec.Type != "" {
			declared, err := c.scope.resolve(spec.Type)
			if err != nil {
				return nil, err
			}
			if declared != p.Type {
				return nil, fmt.Errorf("type %s does not match contract property type %s", declared, p.Type)
			}
		}
	} else {
		typ, err := c.scope.resolve(spec.Type)
		if err != nil {
			return nil, err
		}
		if p, err = dyntypes.NewPropertyGenerator(spec.Name, typ); err != nil {
			return nil, err
		}
	}

	if spec.Access != "" {
		get, set, err := parseAccess(spec.Access)
		if err != nil {
			return nil, err
		}
		p.Get, p.Set = get, set
	}
	return p, nil
}

func (c *typeCompiler) field(spec *MemberSpec) (*dyntypes.FieldGenerator, error) {
	if spec.Contract != "" {
		return nil, fmt.Errorf("fields cannot implement contract members")
	}
	typ, err := c.scope.resolve(spec.Type)
	if err != nil {
		return nil, err
	}
	f, err := dyntypes.NewFieldGenerator(spec.Name, typ)
	if err != nil {
		return nil, err
	}
	f.Public = spec.Public
	return f, nil
}

func (c *typeCompiler) redirect(spec *MemberSpec) (*dyntypes.RedirectPropertyGenerator, error) {
	var r *dyntypes.RedirectPropertyGenerator
	var err error
	switch target := c.named[spec.Target].(type) {
	case *dyntypes.FieldGenerator:
		r, err = dyntypes.NewRedirectPropertyGenerator(spec.Name, target)
	case *dyntypes.PropertyGenerator:
		r, err = dyntypes.NewAliasProperty(spec.Name, target)
	default:
		if spec.Target == "" {
			return nil, fmt.Errorf("redirect target is required")
		}
		return nil, fmt.Errorf("redirect target '%s' is not a field or property declared before it", spec.Target)
	}
	if err != nil {
		return nil, err
	}

	if spec.Type != "" {
		declared, err := c.scope.resolve(spec.Type)
		if err != nil {
			return nil, err
		}
		if declared != r.Type {
			return nil, fmt.Errorf("type %s does not match target type %s", declared, r.Type)
		}
	}
	if spec.Contract != "" {
		contract, err := c.scope.contract(spec.Contract)
		if err != nil {
			return nil, err
		}
		r.SetOverrideDefinition(contract)
	}
	if spec.Access != "" {
		if r.Get, r.Set, err = parseAccess(spec.Access); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (c *typeCompiler) method(spec *MemberSpec) (*dyntypes.MethodGenerator, error) {
	var m *dyntypes.MethodGenerator
	if spec.Type == "" {
		m = dyntypes.NewConstMethod(spec.Name, spec.Value)
	} else {
		typ, err := c.scope.resolve(spec.Type)
		if err != nil {
			return nil, err
		}
		value, err := constantOf(spec.Value, typ)
		if err != nil {
			return nil, err
		}
		if value == nil {
			m = dyntypes.NewMethodGenerator(spec.Name, typ, nil, nil)
		} else {
			m = dyntypes.NewMethodGenerator(spec.Name, typ, nil, func(il *dyntypes.ILGenerator) {
				il.EmitConst(value)
				il.Emit(dyntypes.OpRet)
			})
		}
	}

	if spec.Contract != "" {
		contract, err := c.scope.contract(spec.Contract)
		if err != nil {
			return nil, err
		}
		m.SetOverrideDefinition(contract)
	}
	return m, nil
}

// constantOf returns value as a constant of typ. YAML decodes every integer
// literal as int and every decimal as float64, so numbers are converted to the
// declared numeric type when they fit without loss.
func constantOf(value any, typ *dyntypes.Type) (any, error) {
	if value == nil || typ.IsInstance(value) {
		return value, nil
	}
	mismatch := fmt.Errorf("value %v (%T) is not a %s", value, value, typ)

	target := typ.GoType()
	rv := reflect.ValueOf(value)
	if target == nil || !isNumber(rv.Kind()) || !isNumber(target.Kind()) || !rv.Type().ConvertibleTo(target) {
		return nil, mismatch
	}

	limit := reflect.New(target).Elem()
	overflow := fmt.Errorf("value %v does not fit in %s", value, typ)
	switch {
	case limit.CanInt():
		switch {
		case rv.CanInt():
			if limit.OverflowInt(rv.Int()) {
				return nil, overflow
			}
		case rv.CanUint():
			if rv.Uint() > 1<<63-1 || limit.OverflowInt(int64(rv.Uint())) {
				return nil, overflow
			}
		default:
			return nil, mismatch
		}
	case limit.CanUint():
		switch {
		case rv.CanInt():
			if rv.Int() < 0 || limit.OverflowUint(uint64(rv.Int())) {
				return nil, overflow
			}
		case rv.CanUint():
			if limit.OverflowUint(rv.Uint()) {
				return nil, overflow
			}
		default:
			return nil, mismatch
		}
	case limit.CanFloat():
		f := rv.Convert(reflect.TypeOf(float64(0))).Float()
		if limit.OverflowFloat(f) {
			return nil, overflow
		}
	}
	return rv.Convert(target).Interface(), nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (c *typeCompiler) attribute(text string, pos position) (*dyntypes.AttributeGenerator, error) {
	attr, err := dyntypes.ParseAttribute(text)
	if err != nil {
		return nil, err
	}
	if c.opts.StrictAttributes {
		registry := annotations.DefaultRegistry()
		if _, ok := registry.Schema(attr.Name); !ok {
			return nil, errors.NewValidationError("@"+attr.Name, "registered attribute", "unknown attribute").
				WithLocation(pos.location(c.file)).
				WithSuggestion(fmt.Sprintf("Known attributes: %s", strings.Join(registry.Names(), ", ")))
		}
	}
	return attr, nil
}

// wrapAt turns a failure into a configuration error located in the manifest
func wrapAt(file string, pos position, what string, err error) *errors.BaseError {
	return errors.Wrap(errors.ConfigurationErrorCode, fmt.Sprintf("%s is invalid", what), err).
		WithLocation(pos.location(file))
}

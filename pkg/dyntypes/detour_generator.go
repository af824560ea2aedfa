package dyntypes

import (
	"fmt"
	"reflect"

	"github.com/toyz/dyntypes/internal/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// DetourMethodGenerator emits a method that forwards its arguments to a Go
// method of the value held in a field:
//
//	ldarg 0; ldfld field; ldarg 1..n; call method; ret
type DetourMethodGenerator struct {
	MemberBase

	// Target holds the Go value the call is forwarded to.
	Target *FieldGenerator

	// Method is the Go method invoked on the target value.
	Method string

	// CompiledMethod is nil until Compiled runs.
	CompiledMethod *MethodInfo

	call *goMethodCall
}

// NewDetourMethodGenerator creates a method named after method that forwards to
// the Go method of the value stored in target.
func NewDetourMethodGenerator(target *FieldGenerator, method string) (*DetourMethodGenerator, error) {
	if target == nil || target.Type == nil {
		return nil, errors.NewValidationError(method, "detour target field", "nil")
	}
	if target.Type.Kind() != KindValue {
		return nil, errors.NewValidationError(target.Name, "field holding a Go value", target.Type.Kind().String())
	}
	call, err := newGoMethodCall(target.Type.GoType(), method)
	if err != nil {
		return nil, err
	}

	params := make([]*Type, len(call.in))
	for i, in := range call.in {
		params[i] = TypeFor(in)
	}
	return &DetourMethodGenerator{
		MemberBase: MemberBase{Name: method, Type: TypeFor(call.out)},
		Target:     target,
		Method:     method,
		call:       call,
	}, nil
}

// NewDetourFor creates a detour implementing method of the Go interface T
func NewDetourFor[T any](target *FieldGenerator, method string) (*DetourMethodGenerator, error) {
	contract, err := ContractOf[T]()
	if err != nil {
		return nil, err
	}
	if _, ok := ContractMethod(contract, method); !ok {
		return nil, errors.NewContractMismatchError(contract.Name(), method, nil)
	}
	d, err := NewDetourMethodGenerator(target, method)
	if err != nil {
		return nil, err
	}
	d.SetOverrideDefinition(contract)
	return d, nil
}

// Parameters returns the parameter types of the forwarded method
func (d *DetourMethodGenerator) Parameters() []*Type {
	params := make([]*Type, len(d.call.in))
	for i, in := range d.call.in {
		params[i] = TypeFor(in)
	}
	return params
}

// DefineMember defines the target field if needed, then the forwarding method
func (d *DetourMethodGenerator) DefineMember(tb *TypeBuilder, tg *TypeGenerator) error {
	if d.IsDefinedOn(tb) {
		return nil
	}
	d.resetDefinition()

	if err := d.Target.DefineMember(tb, tg); err != nil {
		return err
	}
	mb, err := defineMethod(tb, d.Name, MethodPublic|MethodHideBySig|MethodVirtual,
		d.Type, d.Parameters(), d.Attributes)
	if err != nil {
		return err
	}

	il := mb.ILGenerator()
	il.EmitArg(0)
	il.EmitField(OpLdFld, d.Target.Builder())
	for i := range d.call.in {
		il.EmitArg(i + 1)
	}
	il.EmitCall(d.call, len(d.call.in))
	il.Emit(OpRet)

	if err := registerMethodOverrides(tb, mb, d.Name, d.OverrideDefinitions); err != nil {
		return err
	}
	d.MarkDefined(tb)
	return nil
}

// Compiled resolves CompiledMethod
func (d *DetourMethodGenerator) Compiled(tg *TypeGenerator) error {
	method, err := resolveMethod(tg, d.Name)
	if err != nil {
		return err
	}
	d.CompiledMethod = method
	return nil
}

func (d *DetourMethodGenerator) rollback(tb *TypeBuilder) {
	if d.CompiledMethod != nil && discarded(tb, d.CompiledMethod.DeclaringType()) {
		d.CompiledMethod = nil
	}
	d.forget(tb)
	d.Target.rollback(tb)
}

// goMethodCall calls a Go method by name on the receiver popped by OpCall.
// Supported results are (), (R), (error) and (R, error).
type goMethodCall struct {
	name   string
	in     []reflect.Type
	out    reflect.Type
	hasErr bool
}

func newGoMethodCall(recv reflect.Type, name string) (*goMethodCall, error) {
	m, ok := recv.MethodByName(name)
	if !ok {
		return nil, errors.NewResolutionError(recv.String(), "method", name).
			WithSuggestion("Only exported methods of the field type can be forwarded")
	}
	ft := m.Type
	first := 1
	if recv.Kind() == reflect.Interface {
		first = 0
	}
	if ft.IsVariadic() {
		return nil, errors.NewDefinitionError(recv.String(), name, "variadic methods cannot be forwarded")
	}

	call := &goMethodCall{name: name}
	for i := first; i < ft.NumIn(); i++ {
		call.in = append(call.in, ft.In(i))
	}
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
		call.hasErr = true
	case ft.NumOut() == 1:
		call.out = ft.Out(0)
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		call.out = ft.Out(0)
		call.hasErr = true
	default:
		return nil, errors.NewDefinitionError(recv.String(), name,
			fmt.Sprintf("unsupported results %s", ft))
	}
	return call, nil
}

func (c *goMethodCall) Name() string    { return c.name }
func (c *goMethodCall) NumIn() int      { return len(c.in) }
func (c *goMethodCall) HasResult() bool { return c.out != nil }

func (c *goMethodCall) Call(recv any, args []any) (result any, err error) {
	if recv == nil {
		return nil, errors.NewInvocationError("<nil>", c.name, "detour target is not set")
	}
	rv := reflect.ValueOf(recv)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, errors.NewInvocationError(rv.Type().String(), c.name, "detour target is not set")
	}
	method := rv.MethodByName(c.name)
	if !method.IsValid() {
		return nil, errors.NewResolutionError(rv.Type().String(), "method", c.name)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(c.in[i])
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewInvocationError(rv.Type().String(), c.name, fmt.Sprintf("panic: %v", r))
		}
	}()
	out := method.Call(in)

	if c.hasErr {
		if e, _ := out[len(out)-1].Interface().(error); e != nil {
			return nil, e
		}
	}
	if c.out == nil {
		return nil, nil
	}
	return out[0].Interface(), nil
}

package manifest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/toyz/dyntypes/internal/utils"
	"github.com/toyz/dyntypes/pkg/dyntypes"
)

var builtinTypes = map[string]*dyntypes.Type{
	"any":     dyntypes.TypeOf[any](),
	"bool":    dyntypes.TypeOf[bool](),
	"byte":    dyntypes.TypeOf[byte](),
	"error":   dyntypes.TypeOf[error](),
	"float32": dyntypes.TypeOf[float32](),
	"float64": dyntypes.TypeOf[float64](),
	"int":     dyntypes.TypeOf[int](),
	"int32":   dyntypes.TypeOf[int32](),
	"int64":   dyntypes.TypeOf[int64](),
	"rune":    dyntypes.TypeOf[rune](),
	"string":  dyntypes.TypeOf[string](),
	"uint":    dyntypes.TypeOf[uint](),
	"uint64":  dyntypes.TypeOf[uint64](),
}

// BuiltinTypeNames returns the names of the predeclared value types, sorted
func BuiltinTypeNames() []string {
	names := make([]string, 0, len(builtinTypes))
	for name := range builtinTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// typeScope resolves type expressions against the builtins and the contracts
// and classes declared so far.
type typeScope struct {
	declared *utils.BaseRegistry[string, *dyntypes.Type]
}

func newTypeScope() *typeScope {
	declared := utils.NewBaseRegistry[string, *dyntypes.Type]("type", "type name")
	declared.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[*dyntypes.Type]("type name"),
		func(name string, _ *dyntypes.Type, _ map[string]*dyntypes.Type) error {
			if _, ok := builtinTypes[name]; ok {
				return fmt.Errorf("type name '%s' is predeclared", name)
			}
			return nil
		},
		utils.NoDuplicateValidator[string, *dyntypes.Type]("type name"),
	))
	return &typeScope{declared: declared}
}

func (s *typeScope) declare(t *dyntypes.Type) error {
	return s.declared.Register(t.Name(), t)
}

// resolve parses a type expression. Value types accept the composite forms
// []T, *T and map[string]T; declared contracts and classes are referenced by name.
func (s *typeScope) resolve(expr string) (*dyntypes.Type, error) {
	expr = strings.TrimSpace(expr)
	if t, ok := builtinTypes[expr]; ok {
		return t, nil
	}
	if t, ok := s.declared.Get(expr); ok {
		return t, nil
	}

	var wrap func(reflect.Type) reflect.Type
	var elem string
	switch {
	case strings.HasPrefix(expr, "[]"):
		elem, wrap = expr[2:], reflect.SliceOf
	case strings.HasPrefix(expr, "*"):
		elem, wrap = expr[1:], reflect.PointerTo
	case strings.HasPrefix(expr, "map[string]"):
		elem = expr[len("map[string]"):]
		wrap = func(v reflect.Type) reflect.Type { return reflect.MapOf(reflect.TypeOf(""), v) }
	default:
		if expr == "" {
			return nil, fmt.Errorf("type is required")
		}
		return nil, fmt.Errorf("unknown type '%s'", expr)
	}

	inner, err := s.resolve(elem)
	if err != nil {
		return nil, err
	}
	if inner.GoType() == nil || inner.Kind() != dyntypes.KindValue {
		return nil, fmt.Errorf("'%s': composite types can only hold value types", expr)
	}
	return dyntypes.TypeFor(wrap(inner.GoType())), nil
}

func (s *typeScope) contract(name string) (*dyntypes.Type, error) {
	t, err := s.declared.GetOrError(name)
	if err != nil {
		return nil, err
	}
	if t.Kind() != dyntypes.KindContract {
		return nil, fmt.Errorf("'%s' is a %s type, not a contract", name, t.Kind())
	}
	return t, nil
}

func parseAccess(access string) (get, set bool, err error) {
	switch strings.ToLower(strings.ReplaceAll(access, " ", "")) {
	case "", "getset", "get,set":
		return true, true, nil
	case "get":
		return true, false, nil
	case "set":
		return false, true, nil
	}
	return false, false, fmt.Errorf("access '%s' must be get, set or getset", access)
}

func accessOf(get, set bool) dyntypes.Access {
	switch {
	case get && set:
		return dyntypes.AccessGetSet
	case set:
		return dyntypes.AccessSet
	}
	return dyntypes.AccessGet
}

package dyntypes

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/toyz/dyntypes/internal/errors"
)

// DynamicTypePrefix prefixes the generated name of an unnamed TypeGenerator.
const DynamicTypePrefix = "Dynamic_"

// Reporter receives progress messages during compilation
type Reporter interface {
	Debug(format string, args ...interface{})
	Verbose(format string, args ...interface{})
}

// TypeGenerator owns an ordered list of member generators and compiles them
// into a class type.
type TypeGenerator struct {
	// Name of the generated type. An empty name is replaced by
	// DynamicTypePrefix followed by a random suffix on first compilation.
	Name string

	Members     []MemberGenerator
	Interfaces  []*Type
	Attributes  []*AttributeGenerator
	Diagnostics Reporter

	compiled  *Type
	compiling bool
}

// NewTypeGenerator creates a generator for a type named name
func NewTypeGenerator(name string, members ...MemberGenerator) *TypeGenerator {
	return &TypeGenerator{Name: name, Members: members}
}

// Add appends members
func (tg *TypeGenerator) Add(members ...MemberGenerator) *TypeGenerator {
	tg.Members = append(tg.Members, members...)
	return tg
}

// Implement adds contracts the type must implement
func (tg *TypeGenerator) Implement(contracts ...*Type) *TypeGenerator {
	tg.Interfaces = append(tg.Interfaces, contracts...)
	return tg
}

// Compile builds the type. Every member is defined in order, the type is
// finalized, then every member is notified in the same order. Any failure
// aborts the whole compilation: no type is recorded and the members can be
// compiled again. Once compiled, the same type is returned.
func (tg *TypeGenerator) Compile() (*Type, error) {
	if tg.compiled != nil {
		return tg.compiled, nil
	}
	if tg.compiling {
		return nil, errors.NewDefinitionError(tg.Name, "Compile", "compilation already in progress")
	}
	tg.compiling = true
	defer func() { tg.compiling = false }()

	if tg.Name == "" {
		tg.Name = DynamicTypePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	tb, err := NewTypeBuilder(tg.Name)
	if err != nil {
		return nil, errors.WrapCompilationError(tg.Name, "open", tg.Name, err)
	}
	t, err := tg.compile(tb)
	if err != nil {
		tg.compiled = nil
		for _, m := range tg.Members {
			if r, ok := m.(rollbacker); ok {
				r.rollback(tb)
			}
		}
		return nil, err
	}
	return t, nil
}

func (tg *TypeGenerator) compile(tb *TypeBuilder) (*Type, error) {
	for _, contract := range tg.Interfaces {
		if err := tb.AddInterfaceImplementation(contract); err != nil {
			return nil, errors.WrapCompilationError(tg.Name, "implement", contract.String(), err)
		}
	}
	attrs, err := buildAttributes(tg.Attributes)
	if err != nil {
		return nil, errors.WrapCompilationError(tg.Name, "attribute", tg.Name, err)
	}
	for _, a := range attrs {
		if err := tb.SetCustomAttribute(a); err != nil {
			return nil, errors.WrapCompilationError(tg.Name, "attribute", "@"+a.Name(), err)
		}
	}

	for i, m := range tg.Members {
		if m == nil {
			return nil, errors.WrapCompilationError(tg.Name, "define", fmt.Sprintf("#%d", i),
				errors.NewDefinitionError(tg.Name, fmt.Sprintf("#%d", i), "nil member"))
		}
		tg.debug("define %s", m.MemberName())
		if err := m.DefineMember(tb, tg); err != nil {
			return nil, errors.WrapCompilationError(tg.Name, "define", m.MemberName(), err)
		}
	}

	t, err := tb.CreateType()
	if err != nil {
		return nil, errors.WrapCompilationError(tg.Name, "finalize", tg.Name, err)
	}
	tg.verbose("finalized %s: %d fields, %d properties, %d methods",
		t.Name(), len(t.fields), len(t.properties), len(t.methods))

	tg.compiled = t
	for _, m := range tg.Members {
		if err := m.Compiled(tg); err != nil {
			return nil, errors.WrapCompilationError(tg.Name, "resolve", m.MemberName(), err)
		}
	}
	return t, nil
}

// Type returns the compiled type, compiling it first if needed. During the
// Compiled pass it returns the finalized type.
func (tg *TypeGenerator) Type() (*Type, error) {
	if tg.compiled != nil {
		return tg.compiled, nil
	}
	if tg.compiling {
		return nil, errors.NewResolutionError(tg.Name, "type", tg.Name).
			WithSuggestion("The type is only available once every member is defined")
	}
	return tg.Compile()
}

// CreateInstance compiles the type if needed and creates a zero-initialized instance
func (tg *TypeGenerator) CreateInstance() (*Object, error) {
	t, err := tg.Type()
	if err != nil {
		return nil, err
	}
	return t.New()
}

func (tg *TypeGenerator) debug(format string, args ...interface{}) {
	if tg.Diagnostics != nil {
		tg.Diagnostics.Debug(format, args...)
	}
}

func (tg *TypeGenerator) verbose(format string, args ...interface{}) {
	if tg.Diagnostics != nil {
		tg.Diagnostics.Verbose(format, args...)
	}
}

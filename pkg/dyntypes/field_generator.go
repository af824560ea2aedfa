package dyntypes

import (
	"github.com/toyz/dyntypes/internal/errors"
)

// FieldGenerator emits a storage slot
type FieldGenerator struct {
	MemberBase

	// Public exposes the field through Object.Get and Object.Set.
	Public bool

	// Field is the resolved field, nil until Compiled runs.
	Field *FieldInfo

	builder *FieldBuilder
}

// NewFieldGenerator creates a generator for a field named name of type typ
func NewFieldGenerator(name string, typ *Type) (*FieldGenerator, error) {
	if typ == nil {
		return nil, errors.NewValidationError(name, "field type", "nil")
	}
	return &FieldGenerator{MemberBase: MemberBase{Name: name, Type: typ}}, nil
}

// NewFieldOf creates a generator for a field of Go type T
func NewFieldOf[T any](name string) *FieldGenerator {
	return &FieldGenerator{MemberBase: MemberBase{Name: name, Type: TypeOf[T]()}}
}

// Builder returns the field under construction, nil before DefineMember
func (f *FieldGenerator) Builder() *FieldBuilder { return f.builder }

// DefineMember emits the field. Repeated calls against the same builder are
// ignored, so other members may define a field they depend on early.
func (f *FieldGenerator) DefineMember(tb *TypeBuilder, _ *TypeGenerator) error {
	if f.IsDefinedOn(tb) {
		return nil
	}
	f.resetDefinition()
	f.builder = nil

	attrs := FieldPrivate
	if f.Public {
		attrs = FieldPublic
	}
	fb, err := tb.DefineField(f.Name, f.Type, attrs)
	if err != nil {
		return err
	}
	built, err := buildAttributes(f.Attributes)
	if err != nil {
		return err
	}
	for _, a := range built {
		if err := fb.SetCustomAttribute(a); err != nil {
			return err
		}
	}

	f.builder = fb
	f.MarkDefined(tb)
	return nil
}

// Compiled resolves Field
func (f *FieldGenerator) Compiled(tg *TypeGenerator) error {
	t, err := tg.Type()
	if err != nil {
		return err
	}
	field, ok := t.Field(f.Name)
	if !ok {
		return errors.NewResolutionError(t.Name(), "field", f.Name)
	}
	f.Field = field
	return nil
}

func (f *FieldGenerator) rollback(tb *TypeBuilder) {
	if f.Field != nil && discarded(tb, f.Field.DeclaringType()) {
		f.Field = nil
	}
	if f.forget(tb) {
		f.builder = nil
	}
}

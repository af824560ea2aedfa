package dyntypes

import (
	"github.com/toyz/dyntypes/internal/errors"
)

// RedirectPropertyGenerator emits a property whose accessors read and write
// the storage of another field.
type RedirectPropertyGenerator struct {
	MemberBase

	PropertyName string
	Target       *FieldGenerator
	Get          bool
	Set          bool

	// CompiledProperty is nil until Compiled runs.
	CompiledProperty *PropertyInfo

	builder *PropertyBuilder
}

// NewRedirectPropertyGenerator creates a property named name stored in target
func NewRedirectPropertyGenerator(name string, target *FieldGenerator) (*RedirectPropertyGenerator, error) {
	if target == nil {
		return nil, errors.NewValidationError(name, "redirect target", "nil")
	}
	return &RedirectPropertyGenerator{
		MemberBase:   MemberBase{Name: name, Type: target.Type},
		PropertyName: name,
		Target:       target,
		Get:          true,
		Set:          true,
	}, nil
}

// NewAliasProperty creates a property named name sharing the backing field of target
func NewAliasProperty(name string, target *PropertyGenerator) (*RedirectPropertyGenerator, error) {
	if target == nil {
		return nil, errors.NewValidationError(name, "alias target", "nil")
	}
	return NewRedirectPropertyGenerator(name, target.BackingField)
}

// DefineMember defines the target field if needed, then the property and its accessors
func (r *RedirectPropertyGenerator) DefineMember(tb *TypeBuilder, tg *TypeGenerator) error {
	if r.IsDefinedOn(tb) {
		return nil
	}
	r.resetDefinition()
	r.builder = nil

	if err := r.Target.DefineMember(tb, tg); err != nil {
		return err
	}
	field := r.Target.Builder()
	if r.Type != field.Type() {
		return errors.NewDefinitionError(tb.Name(), r.PropertyName,
			"property type differs from the type of "+field.Name())
	}
	pb, err := definePropertySlot(tb, r.PropertyName, r.Type, r.Attributes)
	if err != nil {
		return err
	}
	accessors := accessorSpec{
		property: pb,
		field:    field,
		get:      r.Get,
		set:      r.Set,
		attrs:    r.accessorAttributes(),
		targets:  r.OverrideDefinitions,
	}
	if err := accessors.define(tb); err != nil {
		return err
	}

	r.builder = pb
	r.MarkDefined(tb)
	return nil
}

// Compiled resolves CompiledProperty and the target field
func (r *RedirectPropertyGenerator) Compiled(tg *TypeGenerator) error {
	t, err := tg.Type()
	if err != nil {
		return err
	}
	prop, ok := t.Property(r.PropertyName)
	if !ok {
		return errors.NewResolutionError(t.Name(), "property", r.PropertyName)
	}
	field, ok := t.Field(r.Target.Name)
	if !ok {
		return errors.NewResolutionError(t.Name(), "field", r.Target.Name)
	}
	if r.Target.Field != field {
		if err := r.Target.Compiled(tg); err != nil {
			return err
		}
	}
	r.CompiledProperty = prop
	return nil
}

func (r *RedirectPropertyGenerator) rollback(tb *TypeBuilder) {
	if r.CompiledProperty != nil && discarded(tb, r.CompiledProperty.DeclaringType()) {
		r.CompiledProperty = nil
	}
	if r.forget(tb) {
		r.builder = nil
	}
	r.Target.rollback(tb)
}

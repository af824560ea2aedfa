package dyntypes

// MemberGenerator is a declarative request to add one member to a type.
//
// A TypeGenerator calls DefineMember on every member in list order while the
// type is under construction, finalizes the type, then calls Compiled on every
// member in the same order. The two passes are never interleaved.
type MemberGenerator interface {
	// MemberName returns the name of the generated member
	MemberName() string

	// DefineMember emits the member into the type under construction
	DefineMember(tb *TypeBuilder, tg *TypeGenerator) error

	// Compiled resolves handles into the finalized type, available from tg.Type
	Compiled(tg *TypeGenerator) error
}

// MemberBase holds the state shared by every member generator. Embed it and
// implement DefineMember.
type MemberBase struct {
	Name       string
	Type       *Type
	Attributes []*AttributeGenerator

	// Defined is set once the member has been emitted into the current builder.
	Defined bool

	// OverrideDefinitions lists the contracts whose like-named member this
	// member implements. Index 0 is the primary contract; entries may be nil.
	OverrideDefinitions []*Type

	definedOn *TypeBuilder
}

// MemberName returns Name
func (m *MemberBase) MemberName() string { return m.Name }

// OverrideDefinition returns the primary contract, or nil when there is none
func (m *MemberBase) OverrideDefinition() *Type {
	if len(m.OverrideDefinitions) == 0 {
		return nil
	}
	return m.OverrideDefinitions[0]
}

// SetOverrideDefinition replaces the primary contract, creating the entry if absent
func (m *MemberBase) SetOverrideDefinition(contract *Type) {
	if len(m.OverrideDefinitions) == 0 {
		m.OverrideDefinitions = append(m.OverrideDefinitions, contract)
		return
	}
	m.OverrideDefinitions[0] = contract
}

// AddAttribute appends attrs to the attribute list
func (m *MemberBase) AddAttribute(attrs ...*AttributeGenerator) {
	m.Attributes = append(m.Attributes, attrs...)
}

// Compiled does nothing
func (m *MemberBase) Compiled(*TypeGenerator) error { return nil }

// IsDefinedOn reports whether the member was already emitted into tb
func (m *MemberBase) IsDefinedOn(tb *TypeBuilder) bool {
	return m.Defined && m.definedOn == tb
}

// MarkDefined records that the member was emitted into tb
func (m *MemberBase) MarkDefined(tb *TypeBuilder) {
	m.Defined = true
	m.definedOn = tb
}

func (m *MemberBase) resetDefinition() {
	m.Defined = false
	m.definedOn = nil
}

// overrides reports whether any override target is set
func (m *MemberBase) overrides() bool {
	for _, t := range m.OverrideDefinitions {
		if t != nil {
			return true
		}
	}
	return false
}

// accessorAttributes returns the method shape of generated accessors; only
// virtuality depends on the override targets.
func (m *MemberBase) accessorAttributes() MethodAttributes {
	if m.overrides() {
		return AccessorAttributes | MethodVirtual
	}
	return AccessorAttributes
}

// rollbacker is implemented by members holding state that must be discarded
// when the compilation into tb fails. Handles into types compiled by other
// builders are kept.
type rollbacker interface {
	rollback(tb *TypeBuilder)
}

// discarded reports whether declaring is the type finalized by the failed builder tb
func discarded(tb *TypeBuilder, declaring *Type) bool {
	return tb.created != nil && declaring == tb.created
}

// forget clears the definition state recorded for tb
func (m *MemberBase) forget(tb *TypeBuilder) bool {
	if !m.IsDefinedOn(tb) {
		return false
	}
	m.resetDefinition()
	return true
}

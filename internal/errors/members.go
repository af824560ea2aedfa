package errors

import (
	"fmt"
	"strings"
)

// MemberError describes a failure tied to a single generated member
type MemberError struct {
	*BaseError
	TypeName   string // type under construction, if known
	MemberName string // member that failed
}

// WithType records the type under construction
func (e *MemberError) WithType(typeName string) *MemberError {
	e.TypeName = typeName
	e.BaseError.WithContext("type", typeName)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *MemberError) WithSuggestion(suggestion string) *MemberError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// WithCause adds an underlying error cause
func (e *MemberError) WithCause(cause error) *MemberError {
	e.BaseError.WithCause(cause)
	return e
}

func newMemberError(code ErrorCode, member, message string) *MemberError {
	return &MemberError{
		BaseError:  New(code, message).WithContext("member", member),
		MemberName: member,
	}
}

// NewContractMismatchError reports a contract that lacks the requested member
func NewContractMismatchError(contract, member string, available []string) *MemberError {
	err := newMemberError(ContractMismatchErrorCode, member,
		fmt.Sprintf("contract '%s' has no property named '%s'", contract, member))
	err.BaseError.WithContext("contract", contract)
	if len(available) > 0 {
		err.WithSuggestion(fmt.Sprintf("Available properties: %s", strings.Join(available, ", ")))
	}
	return err.WithSuggestion("Check the property name against the contract declaration")
}

// NewOverrideRegistrationError reports a contract accessor or method that cannot be overridden
func NewOverrideRegistrationError(contract, member, reason string) *MemberError {
	err := newMemberError(OverrideRegistrationErrorCode, member,
		fmt.Sprintf("cannot override '%s' of contract '%s': %s", member, contract, reason))
	err.BaseError.WithContext("contract", contract)
	return err
}

// NewResolutionError reports a member that the finalized type does not expose.
// It signals an inconsistency between definition and finalization.
func NewResolutionError(typeName, kind, member string) *MemberError {
	err := newMemberError(ResolutionErrorCode, member,
		fmt.Sprintf("finalized type '%s' does not expose %s '%s'", typeName, kind, member))
	return err.WithType(typeName)
}

// NewDefinitionError reports an invalid define request on a type builder
func NewDefinitionError(typeName, member, reason string) *MemberError {
	err := newMemberError(DefinitionErrorCode, member,
		fmt.Sprintf("cannot define '%s' on '%s': %s", member, typeName, reason))
	return err.WithType(typeName)
}

// NewTypeSealedError reports a define request on a finalized type builder
func NewTypeSealedError(typeName, member string) *MemberError {
	err := newMemberError(TypeSealedErrorCode, member,
		fmt.Sprintf("type '%s' is already finalized; cannot define '%s'", typeName, member))
	return err.WithType(typeName)
}

// NewInvocationError reports a failure while calling a member on an instance
func NewInvocationError(typeName, member, reason string) *MemberError {
	err := newMemberError(InvocationErrorCode, member,
		fmt.Sprintf("%s.%s: %s", typeName, member, reason))
	return err.WithType(typeName)
}

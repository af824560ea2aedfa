package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocationString(t *testing.T) {
	tests := []struct {
		loc  SourceLocation
		want string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "types.yaml"}, "types.yaml"},
		{SourceLocation{File: "types.yaml", Line: 4}, "types.yaml:4"},
		{SourceLocation{File: "types.yaml", Line: 4, Column: 9}, "types.yaml:4:9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
	assert.True(t, SourceLocation{Line: 3}.IsEmpty())
}

func TestBaseErrorMessage(t *testing.T) {
	err := New(DefinitionErrorCode, "bad member")
	assert.Equal(t, "bad member", err.Error())
	assert.Empty(t, err.Context())

	err.WithCause(fmt.Errorf("root cause")).
		WithLocation(SourceLocation{File: "a.yaml", Line: 2}).
		WithContext("member", "Name").
		WithSuggestions("first", "second")

	assert.Equal(t, "a.yaml:2: bad member: root cause", err.Error())
	assert.Equal(t, "Name", err.Context()["member"])
	assert.Equal(t, []string{"first", "second"}, err.Suggestions())
	assert.Equal(t, "root cause", stderrors.Unwrap(err).Error())
}

func TestMemberErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *MemberError
		code    ErrorCode
		message string
	}{
		{
			"contract mismatch",
			NewContractMismatchError("Account", "Emial", []string{"Email", "ID"}),
			ContractMismatchErrorCode,
			"contract 'Account' has no property named 'Emial'",
		},
		{
			"override registration",
			NewOverrideRegistrationError("Account", "ID", "contract declares no setter"),
			OverrideRegistrationErrorCode,
			"cannot override 'ID' of contract 'Account': contract declares no setter",
		},
		{
			"resolution",
			NewResolutionError("User", "property", "Name"),
			ResolutionErrorCode,
			"finalized type 'User' does not expose property 'Name'",
		},
		{
			"definition",
			NewDefinitionError("User", "Name", "duplicate"),
			DefinitionErrorCode,
			"cannot define 'Name' on 'User': duplicate",
		},
		{
			"sealed",
			NewTypeSealedError("User", "Name"),
			TypeSealedErrorCode,
			"type 'User' is already finalized; cannot define 'Name'",
		},
		{
			"invocation",
			NewInvocationError("User", "Run", "nil instance"),
			InvocationErrorCode,
			"User.Run: nil instance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.ErrorCode())
			assert.Equal(t, tt.message, tt.err.Error())
			assert.Equal(t, tt.err.MemberName, tt.err.Context()["member"])
		})
	}

	mismatch := NewContractMismatchError("Account", "Emial", []string{"Email", "ID"})
	assert.Equal(t, []string{
		"Available properties: Email, ID",
		"Check the property name against the contract declaration",
	}, mismatch.Suggestions())

	resolution := NewResolutionError("User", "property", "Name")
	assert.Equal(t, "User", resolution.TypeName)
	assert.Equal(t, "User", resolution.Context()["type"])
}

func TestValidationErrors(t *testing.T) {
	err := NewValidationError("type name", "identifier", "'1x'")
	assert.Equal(t, "validation failed for 'type name': expected identifier, got '1x'", err.Error())
	assert.Equal(t, ValidationErrorCode, err.ErrorCode())

	withValue := NewValidationErrorWithValue("@json.name", "a b", "invalid json key 'a b'")
	assert.Equal(t, "a b", withValue.Value)
	assert.Contains(t, withValue.Error(), "invalid json key")

	syntax := NewSyntaxErrorWithToken("unexpected token", ")", 4)
	assert.Equal(t, AttributeSyntaxErrorCode, syntax.ErrorCode())
	assert.Contains(t, syntax.Error(), "near token ')'")
}

func TestCodeOfAndHasCode(t *testing.T) {
	inner := NewDefinitionError("User", "Name", "duplicate")
	wrapped := WrapCompilationError("User", "define", "Name", inner)
	plain := fmt.Errorf("context: %w", wrapped)

	assert.Equal(t, CompilationErrorCode, CodeOf(wrapped))
	assert.Equal(t, CompilationErrorCode, CodeOf(plain))
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
	assert.Equal(t, UnknownErrorCode, CodeOf(nil))

	assert.True(t, HasCode(plain, DefinitionErrorCode))
	assert.True(t, HasCode(plain, CompilationErrorCode))
	assert.False(t, HasCode(plain, EmissionErrorCode))
	assert.False(t, HasCode(nil, DefinitionErrorCode))

	var member *MemberError
	require.True(t, stderrors.As(plain, &member))
	assert.Equal(t, "Name", member.MemberName)

	assert.Equal(t, "define", wrapped.Context()["phase"])
	assert.Equal(t,
		"failed to compile type 'User' (define Name): cannot define 'Name' on 'User': duplicate",
		wrapped.Error())
}

func TestMultipleErrors(t *testing.T) {
	var collected *MultipleErrors
	assert.Nil(t, NewMultipleErrors().ErrOrNil())
	assert.Equal(t, "no errors", NewMultipleErrors().Error())

	first := NewDefinitionError("T", "a", "duplicate")
	AddToMultiple(&collected, first)
	require.NotNil(t, collected)
	assert.Same(t, first, collected.ErrOrNil())

	AddToMultiple(&collected, WrapEmissionError("Run", stderrors.New("empty body")).
		WithSuggestion("End the body with ret"))
	assert.Equal(t, 2, collected.Count())
	assert.False(t, collected.IsEmpty())
	assert.Equal(t, DefinitionErrorCode, collected.ErrorCode())
	assert.Same(t, collected, collected.ErrOrNil())

	assert.Equal(t,
		"multiple errors (2 total):\n"+
			"  1. cannot define 'a' on 'T': duplicate\n"+
			"  2. invalid body for method 'Run': empty body",
		collected.Error())
	assert.True(t, HasCode(collected, EmissionErrorCode))
	assert.True(t, HasCode(fmt.Errorf("outer: %w", collected), EmissionErrorCode))
	assert.Equal(t, []string{"End the body with ret"}, collected.Suggestions())
	assert.Equal(t, "a", collected.Context()["error_0_member"])
	assert.Equal(t, "Run", collected.Context()["error_1_method"])
}

func TestErrorCodeString(t *testing.T) {
	for code := UnknownErrorCode; code <= ConfigurationErrorCode; code++ {
		assert.NotEmpty(t, code.String())
	}
	assert.Equal(t, "UnknownError", ErrorCode(999).String())
}

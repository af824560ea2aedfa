package dyntypes

import "github.com/toyz/dyntypes/internal/errors"

// Error is implemented by every error returned from this package.
type Error = errors.SynthError

// ErrorCode classifies an Error.
type ErrorCode = errors.ErrorCode

const (
	CodeValidation           = errors.ValidationErrorCode
	CodeAttributeSyntax      = errors.AttributeSyntaxErrorCode
	CodeContractMismatch     = errors.ContractMismatchErrorCode
	CodeOverrideRegistration = errors.OverrideRegistrationErrorCode
	CodeResolution           = errors.ResolutionErrorCode
	CodeDefinition           = errors.DefinitionErrorCode
	CodeTypeSealed           = errors.TypeSealedErrorCode
	CodeEmission             = errors.EmissionErrorCode
	CodeCompilation          = errors.CompilationErrorCode
	CodeInvocation           = errors.InvocationErrorCode
)

// CodeOf returns the code of the outermost Error in err's chain.
func CodeOf(err error) ErrorCode {
	return errors.CodeOf(err)
}

// HasCode reports whether any Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return errors.HasCode(err, code)
}

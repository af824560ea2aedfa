package errors

import "fmt"

// WrapCompilationError wraps a member failure as a failure of the whole type
func WrapCompilationError(typeName, phase, member string, cause error) *BaseError {
	message := fmt.Sprintf("failed to compile type '%s' (%s %s)", typeName, phase, member)
	return Wrap(CompilationErrorCode, message, cause).
		WithContext("type", typeName).
		WithContext("phase", phase).
		WithContext("member", member)
}

// WrapEmissionError wraps an invalid instruction sequence
func WrapEmissionError(method string, cause error) *BaseError {
	return Wrap(EmissionErrorCode, fmt.Sprintf("invalid body for method '%s'", method), cause).
		WithContext("method", method)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err SynthError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}

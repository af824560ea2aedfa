package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/dyntypes/internal/errors"
)

func overrideFailure() error {
	cause := errors.NewOverrideRegistrationError("Runner", "Run", "method is not virtual").
		WithType("Widget").
		WithSuggestion("Declare the method with a contract binding")
	return errors.WrapCompilationError("Widget", "implement", "Run", cause)
}

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(false, &buf)

	reporter.ReportWarning("This is a test warning")
	reporter.ReportWarning("This is another warning")

	output := buf.String()
	assert.Contains(t, output, "! This is a test warning\n")
	assert.Contains(t, output, "! This is another warning\n")
}

func TestDiagnosticReporter_ReportSynthError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(false, &buf)

	reporter.ReportError("widget.yaml", overrideFailure())
	output := buf.String()

	expectedElements := []string{
		"ERROR: widget.yaml\n==================\n",
		"Type: Override Registration Error",
		"Message: failed to compile type 'Widget' (implement Run)",
		"Cause: cannot override 'Run' of contract 'Runner': method is not virtual",
		"Context:\n   Type: Widget\n   Member: Run\n   Contract: Runner\n   Phase: implement\n",
		"Suggestions:\n   1. Declare the method with a contract binding",
	}
	for _, expected := range expectedElements {
		assert.Contains(t, output, expected)
	}
	assert.NotContains(t, output, "Error Chain:")
	assert.NotContains(t, output, "Location:")
}

func TestDiagnosticReporter_ReportLocatedError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(false, &buf)

	err := errors.Wrap(errors.ConfigurationErrorCode, "type 'User' property 'Email' is invalid",
		fmt.Errorf("unknown type 'Mail'")).
		WithLocation(errors.SourceLocation{File: "users.yaml", Line: 9, Column: 9})
	reporter.ReportError("", err)

	output := buf.String()
	assert.Contains(t, output, "ERROR: Compilation Failed")
	assert.Contains(t, output, "Type: Configuration Error")
	assert.Contains(t, output, "Message: type 'User' property 'Email' is invalid\n")
	assert.Contains(t, output, "Location: users.yaml:9:9")
	assert.Contains(t, output, "Cause: unknown type 'Mail'")
}

func TestDiagnosticReporter_ReportMultipleErrors(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(false, &buf)

	var multi *errors.MultipleErrors
	errors.AddToMultiple(&multi, errors.New(errors.ConfigurationErrorCode, "first problem"))
	errors.AddToMultiple(&multi, errors.NewDefinitionError("Widget", "x", "name is already used"))
	reporter.ReportError("widget.yaml", multi)

	output := buf.String()
	assert.Contains(t, output, "[1/2]\nType: Configuration Error")
	assert.Contains(t, output, "Message: first problem")
	assert.Contains(t, output, "[2/2]\nType: Definition Error")
	assert.Contains(t, output, "Message: cannot define 'x' on 'Widget': name is already used")
}

func TestDiagnosticReporter_ReportNestedCauses(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(false, &buf)

	var multi *errors.MultipleErrors
	errors.AddToMultiple(&multi, errors.New(errors.ValidationErrorCode, "bad name"))
	errors.AddToMultiple(&multi, errors.New(errors.ValidationErrorCode, "bad type"))
	reporter.ReportError("", errors.Wrap(errors.ConfigurationErrorCode, "type 'T' is invalid", multi))

	assert.Contains(t, buf.String(), "Causes:\n   1. bad name\n   2. bad type\n")
}

func TestDiagnosticReporter_ReportBasicError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(true, &buf)

	reporter.ReportError("", fmt.Errorf("this is a basic error"))

	output := buf.String()
	assert.Contains(t, output, "ERROR: Compilation Failed")
	assert.Contains(t, output, "Message: this is a basic error")
	assert.NotContains(t, output, "Type:")
}

func TestDiagnosticReporter_VerboseErrorChain(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporterWithWriter(true, &buf)

	reporter.ReportError("widget.yaml", overrideFailure())

	output := buf.String()
	assert.Contains(t, output, "Error Chain:")
	assert.Contains(t, output, "   1. [CompilationError] failed to compile type 'Widget'")
	assert.Contains(t, output, "   2. [OverrideRegistrationError] cannot override 'Run'")
}

func TestDiagnosticReporter_CodeTitle(t *testing.T) {
	tests := map[errors.ErrorCode]string{
		errors.CompilationErrorCode:          "Compilation Error",
		errors.AttributeSyntaxErrorCode:      "Attribute Syntax Error",
		errors.OverrideRegistrationErrorCode: "Override Registration Error",
		errors.UnknownErrorCode:              "Unknown Error",
	}
	for code, want := range tests {
		assert.Equal(t, want, codeTitle(code))
	}
}

func TestDiagnosticReporter_FormatContextKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type", "Type"},
		{"config_type", "Config Type"},
		{"error_0_member", "Error 0 Member"},
		{"", ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, formatContextKey(test.input))
		})
	}
}

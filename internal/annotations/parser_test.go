package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dyntypes/internal/errors"
)

func TestParseAttribute(t *testing.T) {
	parser := NewParser(nil)

	tests := []struct {
		name   string
		input  string
		want   string
		params map[string]interface{}
	}{
		{
			name:   "bare",
			input:  "@readonly",
			want:   "readonly",
			params: map[string]interface{}{},
		},
		{
			name:   "empty argument list",
			input:  "@deprecated()",
			want:   "deprecated",
			params: map[string]interface{}{},
		},
		{
			name:  "string and flag",
			input: `@json(name="user_id", omitempty)`,
			want:  "json",
			params: map[string]interface{}{
				"name":      "user_id",
				"omitempty": true,
			},
		},
		{
			name:  "numbers and booleans",
			input: "@limits(min=-3, max=10, ratio=0.5, strict=false)",
			want:  "limits",
			params: map[string]interface{}{
				"min":    -3,
				"max":    10,
				"ratio":  0.5,
				"strict": false,
			},
		},
		{
			name:  "identifier value",
			input: "@kind(of=pkg.Widget)",
			want:  "kind",
			params: map[string]interface{}{
				"of": "pkg.Widget",
			},
		},
		{
			name:  "lists",
			input: `@tags(names=["a", "b"], mixed=[1, "x"])`,
			want:  "tags",
			params: map[string]interface{}{
				"names": []string{"a", "b"},
				"mixed": []interface{}{1, "x"},
			},
		},
		{
			name:  "surrounding whitespace",
			input: "   @description( text = \"hi there\" )  ",
			want:  "description",
			params: map[string]interface{}{
				"text": "hi there",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.Parse(tt.input, errors.SourceLocation{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Name)
			assert.Equal(t, tt.params, parsed.Parameters)
		})
	}
}

func TestParseKeepsParameterOrder(t *testing.T) {
	parser := NewParser(nil)

	parsed, err := parser.Parse(`@json(omitempty, name="id")`, errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, []string{"omitempty", "name"}, parsed.Order)
	assert.Equal(t, `@json(omitempty=true, name="id")`, parsed.String())
}

func TestParseSyntaxErrors(t *testing.T) {
	parser := NewParser(nil)
	loc := errors.SourceLocation{File: "person.yaml", Line: 4}

	inputs := []string{
		"",
		"json(name=\"x\")",
		"@json(name=",
		"@json(name=\"x\"",
		"@(x)",
		"@json(a=1, a=2)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := parser.Parse(input, loc)
			require.Error(t, err)
			assert.Equal(t, errors.AttributeSyntaxErrorCode, errors.CodeOf(err))
			assert.Contains(t, err.Error(), "person.yaml:4")
		})
	}
}

func TestParseValidatesKnownSchemas(t *testing.T) {
	parser := NewParser(DefaultRegistry())

	parsed, err := parser.Parse(`@json(name="id")`, errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, "id", parsed.GetString("name"))

	_, err = parser.Parse(`@json(name="bad key")`, errors.SourceLocation{})
	require.Error(t, err)
	assert.Equal(t, errors.ValidationErrorCode, errors.CodeOf(err))

	_, err = parser.Parse(`@description`, errors.SourceLocation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	// unknown attributes are accepted as written
	parsed, err = parser.Parse(`@custom(anything=1)`, errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.GetInt("anything"))
}

func TestParseAll(t *testing.T) {
	parser := NewParser(DefaultRegistry())

	parsed, err := parser.ParseAll([]string{"@readonly", `@description(text="x")`}, errors.SourceLocation{})
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "description", parsed[1].Name)

	_, err = parser.ParseAll([]string{"@readonly", "broken"}, errors.SourceLocation{})
	assert.Error(t, err)
}

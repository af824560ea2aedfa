package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dyntypes/internal/errors"
)

func parsed(name string, kv ...interface{}) *ParsedAttribute {
	p := &ParsedAttribute{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i].(string), kv[i+1])
	}
	return p
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		attribute *ParsedAttribute
		schema    AttributeSchema
		wantErr   bool
		wantCount int
	}{
		{
			name:      "valid json",
			attribute: parsed("json", "name", "id", "omitempty", true),
			schema:    JSONAttributeSchema,
		},
		{
			name:      "wrong type",
			attribute: parsed("json", "omitempty", "yes"),
			schema:    JSONAttributeSchema,
			wantErr:   true,
			wantCount: 1,
		},
		{
			name:      "unknown parameter and missing required",
			attribute: parsed("description", "txt", "oops"),
			schema:    DescriptionAttributeSchema,
			wantErr:   true,
			wantCount: 2,
		},
		{
			name:      "any type accepts everything",
			attribute: parsed("default", "value", []interface{}{1, "x"}),
			schema:    DefaultAttributeSchema,
		},
		{
			name:      "custom validator",
			attribute: parsed("json", "name", "has space"),
			schema:    JSONAttributeSchema,
			wantErr:   true,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.attribute, tt.schema)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ValidationErrorCode))
			if multi, ok := err.(*errors.MultipleErrors); ok {
				assert.Equal(t, tt.wantCount, multi.Count())
			} else {
				assert.Equal(t, 1, tt.wantCount)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	attribute := parsed("json", "name", "id")
	ApplyDefaults(attribute, JSONAttributeSchema)

	assert.Equal(t, false, attribute.Parameters["omitempty"])
	assert.Equal(t, []string{"name", "omitempty"}, attribute.Order)
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget(JSONAttributeSchema, TargetProperty))
	assert.NoError(t, ValidateTarget(DescriptionAttributeSchema, TargetMethod))

	err := ValidateTarget(JSONAttributeSchema, TargetMethod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field|property")
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "any", TargetAny.String())
	assert.Equal(t, "type|method", (TargetType | TargetMethod).String())
	assert.Equal(t, "none", Target(0).String())
	assert.False(t, TargetField.Allows(0))
}

package annotations

import (
	"fmt"
	"sort"

	"github.com/toyz/dyntypes/internal/errors"
)

// Validate validates an attribute against its schema and collects every violation
func Validate(attribute *ParsedAttribute, schema AttributeSchema) error {
	var collected *errors.MultipleErrors

	required := make([]string, 0, len(schema.Parameters))
	for paramName, paramSpec := range schema.Parameters {
		if paramSpec.Required {
			required = append(required, paramName)
		}
	}
	sort.Strings(required)
	for _, paramName := range required {
		if _, exists := attribute.Parameters[paramName]; !exists {
			errors.AddToMultiple(&collected, errors.NewValidationError(
				fmt.Sprintf("@%s.%s", schema.Name, paramName),
				fmt.Sprintf("required parameter of type %s", schema.Parameters[paramName].Type),
				"missing",
			).WithLocation(attribute.Location).
				WithSuggestion(fmt.Sprintf("Add %s=<value> to @%s", paramName, schema.Name)))
		}
	}

	for _, paramName := range attribute.Order {
		paramValue := attribute.Parameters[paramName]
		field := fmt.Sprintf("@%s.%s", schema.Name, paramName)

		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			errors.AddToMultiple(&collected, errors.NewValidationError(
				field, "known parameter", fmt.Sprintf("unknown parameter '%s'", paramName),
			).WithLocation(attribute.Location).
				WithSuggestion(fmt.Sprintf("Remove %s or check parameter name spelling", paramName)))
			continue
		}

		if err := checkValueType(paramSpec.Type, paramValue); err != nil {
			errors.AddToMultiple(&collected, errors.NewValidationError(
				field, paramSpec.Type.String(), fmt.Sprintf("%T", paramValue),
			).WithLocation(attribute.Location))
			continue
		}

		if paramSpec.Validator != nil {
			if err := paramSpec.Validator(paramValue); err != nil {
				errors.AddToMultiple(&collected, errors.NewValidationErrorWithValue(
					field, paramValue, err.Error(),
				).WithLocation(attribute.Location))
			}
		}
	}

	if collected == nil {
		return nil
	}
	return collected.ErrOrNil()
}

// ApplyDefaults fills in default values for missing optional parameters
func ApplyDefaults(attribute *ParsedAttribute, schema AttributeSchema) {
	names := make([]string, 0, len(schema.Parameters))
	for paramName := range schema.Parameters {
		names = append(names, paramName)
	}
	sort.Strings(names)

	for _, paramName := range names {
		paramSpec := schema.Parameters[paramName]
		if !attribute.HasParameter(paramName) && paramSpec.DefaultValue != nil {
			attribute.Set(paramName, paramSpec.DefaultValue)
		}
	}
}

// ValidateTarget checks that the schema allows attaching to target
func ValidateTarget(schema AttributeSchema, target Target) error {
	if schema.Targets.Allows(target) {
		return nil
	}
	return errors.NewValidationError(
		"@"+schema.Name,
		fmt.Sprintf("attribute applicable to %s", schema.Targets),
		fmt.Sprintf("attached to %s", target),
	)
}

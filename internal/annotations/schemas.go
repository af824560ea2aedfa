package annotations

import (
	"fmt"
	"regexp"
)

var jsonNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// JSONAttributeSchema defines the schema for @json attributes
var JSONAttributeSchema = AttributeSchema{
	Name:        "json",
	Description: "Controls the serialized name of a field or property",
	Targets:     TargetField | TargetProperty,
	Parameters: map[string]ParameterSpec{
		"name": {
			Type:        StringType,
			Description: "Serialized key",
			Validator: func(v interface{}) error {
				if !jsonNamePattern.MatchString(v.(string)) {
					return fmt.Errorf("invalid json key '%s'", v)
				}
				return nil
			},
		},
		"omitempty": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Omit the member when it holds its zero value",
		},
	},
	Examples: []string{
		`@json(name="id")`,
		`@json(name="email", omitempty)`,
	},
}

// DescriptionAttributeSchema defines the schema for @description attributes
var DescriptionAttributeSchema = AttributeSchema{
	Name:        "description",
	Description: "Human readable documentation for a member or type",
	Targets:     TargetAny,
	Parameters: map[string]ParameterSpec{
		"text": {
			Type:        StringType,
			Required:    true,
			Description: "Description text",
		},
	},
	Examples: []string{`@description(text="Primary key")`},
}

// DeprecatedAttributeSchema defines the schema for @deprecated attributes
var DeprecatedAttributeSchema = AttributeSchema{
	Name:        "deprecated",
	Description: "Marks a member as deprecated",
	Targets:     TargetAny,
	Parameters: map[string]ParameterSpec{
		"reason": {Type: StringType, Description: "Why the member is deprecated"},
		"since":  {Type: StringType, Description: "Version that deprecated the member"},
	},
	Examples: []string{"@deprecated", `@deprecated(reason="use Email", since="v2")`},
}

// ReadonlyAttributeSchema defines the schema for @readonly attributes
var ReadonlyAttributeSchema = AttributeSchema{
	Name:        "readonly",
	Description: "Documents that consumers must not assign the member",
	Targets:     TargetField | TargetProperty,
	Examples:    []string{"@readonly"},
}

// DefaultAttributeSchema defines the schema for @default attributes
var DefaultAttributeSchema = AttributeSchema{
	Name:        "default",
	Description: "Declares the value a consumer should assume when the member is unset",
	Targets:     TargetField | TargetProperty,
	Parameters: map[string]ParameterSpec{
		"value": {Type: AnyType, Required: true, Description: "Default value"},
	},
	Examples: []string{"@default(value=42)", `@default(value="anonymous")`},
}

// BuiltinSchemas returns the built-in attribute schemas
func BuiltinSchemas() []AttributeSchema {
	return []AttributeSchema{
		JSONAttributeSchema,
		DescriptionAttributeSchema,
		DeprecatedAttributeSchema,
		ReadonlyAttributeSchema,
		DefaultAttributeSchema,
	}
}

// RegisterBuiltinSchemas registers the built-in schemas in registry
func RegisterBuiltinSchemas(registry Registry) error {
	for _, schema := range BuiltinSchemas() {
		if err := registry.Register(schema); err != nil {
			return err
		}
	}
	return nil
}

// Package annotations parses and validates the attributes attached to
// generated members.
package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/dyntypes/internal/errors"
)

// Target is the set of member kinds an attribute may be attached to
type Target int

const (
	TargetType Target = 1 << iota
	TargetField
	TargetProperty
	TargetMethod

	TargetAny = TargetType | TargetField | TargetProperty | TargetMethod
)

// String returns the string representation of the target set
func (t Target) String() string {
	if t == TargetAny {
		return "any"
	}
	var names []string
	for _, tn := range []struct {
		t    Target
		name string
	}{
		{TargetType, "type"},
		{TargetField, "field"},
		{TargetProperty, "property"},
		{TargetMethod, "method"},
	} {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Allows reports whether every kind in other is part of t
func (t Target) Allows(other Target) bool {
	return other != 0 && t&other == other
}

// ParameterType represents the type of an attribute parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	FloatType
	StringSliceType
	AnyType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringSliceType:
		return "[]string"
	case AnyType:
		return "any"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an attribute parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// AttributeSchema defines the schema for a named attribute
type AttributeSchema struct {
	Name        string                   // Attribute name as written after '@'
	Description string                   // Human-readable description
	Targets     Target                   // Member kinds the attribute may decorate
	Parameters  map[string]ParameterSpec // Parameter specifications
	Examples    []string                 // Usage examples
}

// ParsedAttribute represents a parsed attribute with typed parameters
type ParsedAttribute struct {
	Name       string                 // Attribute name
	Parameters map[string]interface{} // Typed parameters
	Order      []string               // Parameter names in source order
	Location   errors.SourceLocation  // Source location
	Raw        string                 // Original attribute text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAttribute) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAttribute) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAttribute) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := p.Parameters[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAttribute) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAttribute) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// Set assigns a parameter, keeping source order for new names
func (p *ParsedAttribute) Set(paramName string, value interface{}) {
	if p.Parameters == nil {
		p.Parameters = make(map[string]interface{})
	}
	if _, exists := p.Parameters[paramName]; !exists {
		p.Order = append(p.Order, paramName)
	}
	p.Parameters[paramName] = value
}

// String renders the attribute back into source form
func (p *ParsedAttribute) String() string {
	if len(p.Order) == 0 {
		return "@" + p.Name
	}
	args := make([]string, 0, len(p.Order))
	for _, name := range p.Order {
		args = append(args, fmt.Sprintf("%s=%s", name, formatValue(p.Parameters[name])))
	}
	return fmt.Sprintf("@%s(%s)", p.Name, strings.Join(args, ", "))
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

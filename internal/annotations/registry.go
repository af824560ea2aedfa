package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/dyntypes/internal/errors"
	"github.com/toyz/dyntypes/internal/utils"
)

// Registry defines the interface for managing attribute schemas
type Registry interface {
	// Register adds a schema under its name
	Register(schema AttributeSchema) error

	// Schema retrieves the schema for an attribute name
	Schema(name string) (AttributeSchema, bool)

	// Names returns all registered attribute names, sorted
	Names() []string
}

// registry is the concrete implementation of Registry
type registry struct {
	schemas *utils.BaseRegistry[string, AttributeSchema]
}

// NewRegistry creates a new, empty attribute registry
func NewRegistry() Registry {
	schemas := utils.NewBaseRegistry[string, AttributeSchema]("attribute", "attribute")
	schemas.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[AttributeSchema]("attribute name"),
		utils.NoDuplicateValidator[string, AttributeSchema]("attribute"),
		func(name string, schema AttributeSchema, _ map[string]AttributeSchema) error {
			return validateSchema(schema)
		},
	))
	return &registry{schemas: schemas}
}

var (
	defaultRegistry     Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry holding the built-in schemas
func DefaultRegistry() Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("failed to register built-in attribute schemas: %v", err))
		}
	})
	return defaultRegistry
}

// Register adds a new attribute schema to the registry
func (r *registry) Register(schema AttributeSchema) error {
	return r.schemas.Register(schema.Name, schema)
}

// Schema retrieves the schema for an attribute name
func (r *registry) Schema(name string) (AttributeSchema, bool) {
	return r.schemas.Get(name)
}

// Names returns all registered attribute names
func (r *registry) Names() []string {
	names := r.schemas.List()
	sort.Strings(names)
	return names
}

// validateSchema performs basic validation on a schema
func validateSchema(schema AttributeSchema) error {
	if schema.Targets == 0 || schema.Targets&^TargetAny != 0 {
		return errors.NewSchemaError(schema.Name, fmt.Sprintf("invalid targets %d", schema.Targets))
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return errors.NewSchemaError(schema.Name, "parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > AnyType {
			return errors.NewSchemaError(schema.Name,
				fmt.Sprintf("invalid parameter type for %s: %d", paramName, paramSpec.Type))
		}

		if paramSpec.DefaultValue != nil {
			if err := checkValueType(paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return errors.NewSchemaError(schema.Name,
					fmt.Sprintf("default value for %s: %v", paramName, err))
			}
		}
	}

	return nil
}

// checkValueType checks if a value matches the parameter type
func checkValueType(paramType ParameterType, value interface{}) error {
	ok := true
	switch paramType {
	case StringType:
		_, ok = value.(string)
	case BoolType:
		_, ok = value.(bool)
	case IntType:
		_, ok = value.(int)
	case FloatType:
		_, ok = value.(float64)
	case StringSliceType:
		_, ok = value.([]string)
	case AnyType:
	default:
		return fmt.Errorf("unknown parameter type %d", paramType)
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", paramType, value)
	}
	return nil
}

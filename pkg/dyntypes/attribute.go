package dyntypes

import (
	"fmt"
	"sort"

	"github.com/toyz/dyntypes/internal/annotations"
	"github.com/toyz/dyntypes/internal/errors"
)

// Attribute is a built, immutable piece of metadata attached to a type or member.
type Attribute struct {
	name   string
	params map[string]any
	order  []string
}

// Name returns the attribute name, without the leading '@'
func (a Attribute) Name() string { return a.name }

// Param returns the value of a parameter
func (a Attribute) Param(name string) (any, bool) {
	v, ok := a.params[name]
	return v, ok
}

// Params returns a copy of the parameters
func (a Attribute) Params() map[string]any {
	out := make(map[string]any, len(a.params))
	for k, v := range a.params {
		out[k] = v
	}
	return out
}

// String renders the attribute in source form
func (a Attribute) String() string {
	return a.parsed().String()
}

func (a Attribute) parsed() *annotations.ParsedAttribute {
	return &annotations.ParsedAttribute{Name: a.name, Parameters: a.params, Order: a.order}
}

// checkTarget rejects attaching a schema-bound attribute to a member kind the schema excludes.
func (a Attribute) checkTarget(target annotations.Target) error {
	schema, ok := annotations.DefaultRegistry().Schema(a.name)
	if !ok {
		return nil
	}
	return annotations.ValidateTarget(schema, target)
}

func findAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// AttributeGenerator describes an attribute to attach to a generated member.
// Build produces the attachable Attribute; the result is cached until the
// generator is modified.
type AttributeGenerator struct {
	Name       string
	Parameters map[string]any
	order      []string
	location   errors.SourceLocation
	built      *Attribute
}

// NewAttribute creates an attribute generator for name
func NewAttribute(name string) *AttributeGenerator {
	return &AttributeGenerator{Name: name, Parameters: make(map[string]any)}
}

// With sets a parameter
func (g *AttributeGenerator) With(key string, value any) *AttributeGenerator {
	if g.Parameters == nil {
		g.Parameters = make(map[string]any)
	}
	if _, exists := g.Parameters[key]; !exists {
		g.order = append(g.order, key)
	}
	g.Parameters[key] = value
	g.built = nil
	return g
}

// ParseAttribute parses attribute source such as @json(name="id", omitempty)
func ParseAttribute(text string) (*AttributeGenerator, error) {
	return parseAttributeAt(text, errors.SourceLocation{})
}

func parseAttributeAt(text string, loc errors.SourceLocation) (*AttributeGenerator, error) {
	parsed, err := annotations.NewParser(annotations.DefaultRegistry()).Parse(text, loc)
	if err != nil {
		return nil, err
	}
	g := NewAttribute(parsed.Name)
	g.location = loc
	for _, key := range parsed.Order {
		g.With(key, parsed.Parameters[key])
	}
	return g, nil
}

// MustParseAttribute is like ParseAttribute but panics on error
func MustParseAttribute(text string) *AttributeGenerator {
	g, err := ParseAttribute(text)
	if err != nil {
		panic(err)
	}
	return g
}

// Build validates the generator against the registered schema, if any, and
// returns the attachable attribute.
func (g *AttributeGenerator) Build() (Attribute, error) {
	if g.built != nil {
		return *g.built, nil
	}
	if !IsIdentifier(g.Name) {
		return Attribute{}, errors.NewValidationError("attribute name", "identifier", fmt.Sprintf("'%s'", g.Name)).
			WithLocation(g.location)
	}

	parsed := &annotations.ParsedAttribute{Name: g.Name, Location: g.location}
	for _, key := range g.keys() {
		parsed.Set(key, g.Parameters[key])
	}
	if schema, ok := annotations.DefaultRegistry().Schema(g.Name); ok {
		if err := annotations.Validate(parsed, schema); err != nil {
			return Attribute{}, err
		}
		annotations.ApplyDefaults(parsed, schema)
	}

	built := Attribute{
		name:   parsed.Name,
		params: parsed.Parameters,
		order:  parsed.Order,
	}
	if built.params == nil {
		built.params = make(map[string]any)
	}
	g.built = &built
	return built, nil
}

// keys returns parameter names in insertion order, followed by entries added
// to Parameters directly, sorted.
func (g *AttributeGenerator) keys() []string {
	seen := make(map[string]bool, len(g.order))
	keys := make([]string, 0, len(g.Parameters))
	for _, k := range g.order {
		if _, ok := g.Parameters[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range g.Parameters {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func buildAttributes(gens []*AttributeGenerator) ([]Attribute, error) {
	attrs := make([]Attribute, 0, len(gens))
	for _, g := range gens {
		if g == nil {
			continue
		}
		a, err := g.Build()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

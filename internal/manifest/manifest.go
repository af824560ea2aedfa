// Package manifest loads YAML type manifests and compiles them into
// dyntypes contracts and class types.
//
// A manifest looks like:
//
//	version: v1.0.0
//	contracts:
//	  - name: Account
//	    properties:
//	      - {name: ID, type: int, access: get}
//	      - {name: Email, type: string}
//	types:
//	  - name: User
//	    implements: [Account]
//	    members:
//	      - {kind: property, name: ID, contract: Account}
//	      - {kind: property, name: Email, contract: Account}
//	      - {kind: redirect, name: Mail, target: Email}
//	      - {kind: method, name: Kind, value: user}
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/toyz/dyntypes/internal/errors"
)

// SupportedMajor is the manifest format major version understood by this package
const SupportedMajor = "v1"

// Manifest is a decoded manifest file
type Manifest struct {
	Version   string         `yaml:"version"`
	Contracts []ContractSpec `yaml:"contracts"`
	Types     []TypeSpec     `yaml:"types"`

	// File is the path the manifest was read from, used in error locations.
	File string `yaml:"-"`
}

// ContractSpec declares a contract
type ContractSpec struct {
	Name       string         `yaml:"name"`
	Properties []PropertySpec `yaml:"properties"`
	Methods    []MethodSpec   `yaml:"methods"`

	pos position
}

// PropertySpec declares a contract property
type PropertySpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Access string `yaml:"access"`
}

// MethodSpec declares an abstract contract method
type MethodSpec struct {
	Name    string   `yaml:"name"`
	Returns string   `yaml:"returns"`
	Params  []string `yaml:"params"`
}

// TypeSpec declares a class type
type TypeSpec struct {
	Name       string       `yaml:"name"`
	Implements []string     `yaml:"implements"`
	Attributes []string     `yaml:"attributes"`
	Members    []MemberSpec `yaml:"members"`

	pos position
}

// Member kinds
const (
	KindProperty = "property"
	KindField    = "field"
	KindRedirect = "redirect"
	KindMethod   = "method"
)

// MemberSpec declares one member of a type. Which keys apply depends on Kind.
type MemberSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Contract names the contract whose like-named member this member implements.
	Contract string `yaml:"contract"`

	// Access selects the accessors of properties and redirects: get, set or getset.
	Access string `yaml:"access"`

	// Public exposes a field through Object.Get and Object.Set.
	Public bool `yaml:"public"`

	// Target names the field or property member a redirect stores into.
	Target string `yaml:"target"`

	// Value is the constant returned by a method.
	Value any `yaml:"value"`

	Attributes []string `yaml:"attributes"`

	pos position
}

type position struct {
	line, column int
}

func (p position) location(file string) errors.SourceLocation {
	return errors.SourceLocation{File: file, Line: p.line, Column: p.column}
}

// unknownKeyError reports a mapping key that no field of the target spec declares
type unknownKeyError struct {
	key   string
	spec  string
	valid []string
	pos   position
}

func (e *unknownKeyError) Error() string {
	return fmt.Sprintf("line %d: unknown key '%s' in %s", e.pos.line, e.key, e.spec)
}

// checkKeys rejects keys of a mapping node that are not yaml tags of spec.
// yaml.v3 does not carry KnownFields into Node.Decode, so custom unmarshalers
// check their own keys.
func checkKeys(node *yaml.Node, name string, spec any) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	valid := yamlKeys(reflect.TypeOf(spec))
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(valid, key.Value) {
			return &unknownKeyError{
				key:   key.Value,
				spec:  name,
				valid: valid,
				pos:   position{key.Line, key.Column},
			}
		}
	}
	return nil
}

func yamlKeys(t reflect.Type) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != "" && tag != "-" {
			keys = append(keys, tag)
		}
	}
	return keys
}

// UnmarshalYAML records the position of the contract in the document
func (c *ContractSpec) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "contract", ContractSpec{}); err != nil {
		return err
	}
	type plain ContractSpec
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.pos = position{node.Line, node.Column}
	return nil
}

// UnmarshalYAML rejects unknown keys of a contract property
func (p *PropertySpec) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "contract property", PropertySpec{}); err != nil {
		return err
	}
	type plain PropertySpec
	return node.Decode((*plain)(p))
}

// UnmarshalYAML rejects unknown keys of a contract method
func (m *MethodSpec) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "contract method", MethodSpec{}); err != nil {
		return err
	}
	type plain MethodSpec
	return node.Decode((*plain)(m))
}

// UnmarshalYAML records the position of the type in the document
func (t *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "type", TypeSpec{}); err != nil {
		return err
	}
	type plain TypeSpec
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.pos = position{node.Line, node.Column}
	return nil
}

// UnmarshalYAML records the position of the member in the document
func (m *MemberSpec) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "member", MemberSpec{}); err != nil {
		return err
	}
	type plain MemberSpec
	if err := node.Decode((*plain)(m)); err != nil {
		return err
	}
	m.pos = position{node.Line, node.Column}
	return nil
}

// Load reads and decodes the manifest at path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigurationError(path, "read", err)
	}
	return Parse(data, path)
}

// Parse decodes a manifest. file is only used in error locations.
func Parse(data []byte, file string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.ConfigurationError(file, "manifest is empty").
				WithLocation(errors.SourceLocation{File: file}).
				WithSuggestion(fmt.Sprintf("Start the manifest with version: %s.0.0", SupportedMajor))
		}
		var unknown *unknownKeyError
		if stderrors.As(err, &unknown) {
			return nil, errors.ConfigurationError(file, fmt.Sprintf("unknown key '%s' in %s", unknown.key, unknown.spec)).
				WithLocation(unknown.pos.location(file)).
				WithContext("key", unknown.key).
				WithSuggestion("Valid keys are: " + strings.Join(unknown.valid, ", "))
		}
		return nil, errors.WrapConfigurationError(file, "parse", err).
			WithLocation(errors.SourceLocation{File: file})
	}
	m.File = file

	if err := checkVersion(m.Version); err != nil {
		return nil, err.WithLocation(errors.SourceLocation{File: file})
	}
	return &m, nil
}

// checkVersion accepts any valid semantic version with the supported major.
// The leading 'v' is optional.
func checkVersion(version string) *errors.BaseError {
	if version == "" {
		return errors.ConfigurationError("manifest", "version is required").
			WithSuggestion(fmt.Sprintf("Add version: %s.0.0", SupportedMajor))
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return errors.ConfigurationError("manifest", fmt.Sprintf("version '%s' is not a semantic version", version)).
			WithContext("version", version)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return errors.ConfigurationError("manifest", fmt.Sprintf("unsupported manifest version %s", version)).
			WithContext("version", version).
			WithSuggestion(fmt.Sprintf("This build reads %s manifests", SupportedMajor))
	}
	return nil
}

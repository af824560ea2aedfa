package annotations

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/dyntypes/internal/errors"
)

// attributeAST is the grammar root: @name or @name(arg, key=value, ...)
type attributeAST struct {
	Name string    `parser:"'@' @Ident"`
	Args []*argAST `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

type argAST struct {
	Pos   lexer.Position
	Key   string    `parser:"@Ident"`
	Value *valueAST `parser:"( '=' @@ )?"`
}

type valueAST struct {
	String *string     `parser:"  @String"`
	Float  *float64    `parser:"| @Float"`
	Int    *int        `parser:"| @Int"`
	Bool   *boolean    `parser:"| @('true' | 'false')"`
	Ident  *string     `parser:"| @Ident"`
	List   []*valueAST `parser:"| '[' ( @@ ( ',' @@ )* )? ']'"`
}

type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

var attributeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[@(),=\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses attribute source text using alecthomas/participle
type Parser struct {
	parser   *participle.Parser[attributeAST]
	registry Registry
}

// NewParser creates a parser validating against registry. A nil registry disables validation.
func NewParser(registry Registry) *Parser {
	parser := participle.MustBuild[attributeAST](
		participle.Lexer(attributeLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	return &Parser{
		parser:   parser,
		registry: registry,
	}
}

// Parse parses a single attribute such as @json(name="id", omitempty)
func (p *Parser) Parse(text string, location errors.SourceLocation) (*ParsedAttribute, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.NewSyntaxError("empty attribute").WithLocation(location)
	}
	if !strings.HasPrefix(trimmed, "@") {
		return nil, errors.NewSyntaxErrorWithToken("attribute must start with '@'", trimmed, 0).
			WithLocation(location).
			WithSuggestion(fmt.Sprintf("Write @%s", trimmed))
	}

	ast, err := p.parser.ParseString(location.File, trimmed)
	if err != nil {
		return nil, syntaxError(err, location)
	}

	parsed := &ParsedAttribute{
		Name:       ast.Name,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        trimmed,
	}
	for _, arg := range ast.Args {
		if parsed.HasParameter(arg.Key) {
			return nil, errors.NewSyntaxErrorWithToken(
				fmt.Sprintf("duplicate parameter '%s'", arg.Key), arg.Key, arg.Pos.Offset).
				WithLocation(location)
		}
		if arg.Value == nil {
			parsed.Set(arg.Key, true)
			continue
		}
		parsed.Set(arg.Key, arg.Value.convert())
	}

	if p.registry != nil {
		if schema, ok := p.registry.Schema(parsed.Name); ok {
			coerce(parsed, schema)
			if err := Validate(parsed, schema); err != nil {
				return nil, err
			}
		}
	}

	return parsed, nil
}

// ParseAll parses a list of attributes, stopping at the first failure
func (p *Parser) ParseAll(texts []string, location errors.SourceLocation) ([]*ParsedAttribute, error) {
	result := make([]*ParsedAttribute, 0, len(texts))
	for _, text := range texts {
		parsed, err := p.Parse(text, location)
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

func (v *valueAST) convert() interface{} {
	switch {
	case v.String != nil:
		return *v.String
	case v.Float != nil:
		return *v.Float
	case v.Int != nil:
		return *v.Int
	case v.Bool != nil:
		return bool(*v.Bool)
	case v.Ident != nil:
		return *v.Ident
	}

	items := make([]interface{}, len(v.List))
	allStrings := true
	for i, item := range v.List {
		items[i] = item.convert()
		if _, ok := items[i].(string); !ok {
			allStrings = false
		}
	}
	if allStrings {
		strs := make([]string, len(items))
		for i, item := range items {
			strs[i] = item.(string)
		}
		return strs
	}
	return items
}

// coerce converts loosely typed values to the schema's parameter types where lossless
func coerce(parsed *ParsedAttribute, schema AttributeSchema) {
	for name, value := range parsed.Parameters {
		spec, ok := schema.Parameters[name]
		if !ok {
			continue
		}
		switch spec.Type {
		case FloatType:
			if i, ok := value.(int); ok {
				parsed.Parameters[name] = float64(i)
			}
		case StringSliceType:
			if s, ok := value.(string); ok {
				parsed.Parameters[name] = []string{s}
			}
		}
	}
}

func syntaxError(err error, location errors.SourceLocation) error {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		pos := perr.Position()
		loc := location
		if loc.Column == 0 {
			loc.Column = pos.Column
		}
		return errors.NewSyntaxErrorWithToken(perr.Message(), "", pos.Offset).
			WithLocation(loc).
			WithSuggestion("Attributes look like @name or @name(key=value, flag)")
	}
	return errors.NewSyntaxError(err.Error()).WithLocation(location)
}

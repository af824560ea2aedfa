package dyntypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttribute(t *testing.T) {
	g, err := ParseAttribute(`@description(text="Primary key")`)
	require.NoError(t, err)
	assert.Equal(t, "description", g.Name)

	attr, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, "description", attr.Name())
	text, ok := attr.Param("text")
	require.True(t, ok)
	assert.Equal(t, "Primary key", text)
	assert.Equal(t, `@description(text="Primary key")`, attr.String())
}

func TestParseAttributeSyntaxErrors(t *testing.T) {
	for _, src := range []string{"", "json", `@json(name=`} {
		_, err := ParseAttribute(src)
		assert.True(t, HasCode(err, CodeAttributeSyntax), "%q: %v", src, err)
	}
	assert.Panics(t, func() { MustParseAttribute("nope") })
}

func TestAttributeBuildAppliesSchema(t *testing.T) {
	attr, err := MustParseAttribute(`@json(name="id")`).Build()
	require.NoError(t, err)

	omit, ok := attr.Param("omitempty")
	require.True(t, ok, "default filled in")
	assert.Equal(t, false, omit)

	_, err = NewAttribute("json").With("name", "has space").Build()
	assert.True(t, HasCode(err, CodeValidation))

	_, err = NewAttribute("description").Build()
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeValidation))
	assert.Contains(t, err.Error(), "@description.text")

	_, err = NewAttribute("readonly").With("strict", true).Build()
	assert.True(t, HasCode(err, CodeValidation))
}

func TestAttributeWithoutSchemaIsAccepted(t *testing.T) {
	attr, err := NewAttribute("audit").With("level", 3).With("owner", "ops").Build()
	require.NoError(t, err)
	assert.Equal(t, `@audit(level=3, owner="ops")`, attr.String())
	assert.Equal(t, map[string]any{"level": 3, "owner": "ops"}, attr.Params())

	bare, err := NewAttribute("marker").Build()
	require.NoError(t, err)
	assert.Equal(t, "@marker", bare.String())
	assert.Empty(t, bare.Params())

	_, err = NewAttribute("not valid").Build()
	assert.True(t, HasCode(err, CodeValidation))
}

func TestAttributeBuildIsCached(t *testing.T) {
	g := NewAttribute("description").With("text", "first")
	first, err := g.Build()
	require.NoError(t, err)

	again, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	g.With("text", "second")
	second, err := g.Build()
	require.NoError(t, err)
	text, _ := second.Param("text")
	assert.Equal(t, "second", text)

	text, _ = first.Param("text")
	assert.Equal(t, "first", text, "built attributes are not affected by later edits")
}

func TestAttributeParamsAreCopied(t *testing.T) {
	attr, err := NewAttribute("audit").With("level", 1).Build()
	require.NoError(t, err)

	params := attr.Params()
	params["level"] = 2
	level, _ := attr.Param("level")
	assert.Equal(t, 1, level)
}

func TestAttributeTargets(t *testing.T) {
	tb := newBuilder(t, "Targets")
	fb, err := tb.DefineField("id", TypeOf[int](), FieldPublic)
	require.NoError(t, err)
	mb, err := tb.DefineMethod("Run", MethodPublic, nil, nil)
	require.NoError(t, err)

	jsonAttr, err := MustParseAttribute(`@json(name="id")`).Build()
	require.NoError(t, err)

	require.NoError(t, fb.SetCustomAttribute(jsonAttr))
	assert.True(t, HasCode(tb.SetCustomAttribute(jsonAttr), CodeValidation))
	assert.True(t, HasCode(mb.SetCustomAttribute(jsonAttr), CodeValidation))

	deprecated, err := MustParseAttribute(`@deprecated(reason="old")`).Build()
	require.NoError(t, err)
	require.NoError(t, tb.SetCustomAttribute(deprecated))
	require.NoError(t, mb.SetCustomAttribute(deprecated))

	mb.ILGenerator().Emit(OpRet)
	typ, err := tb.CreateType()
	require.NoError(t, err)

	id, _ := typ.Field("id")
	require.Len(t, id.Attributes(), 1)
	assert.Equal(t, "json", id.Attributes()[0].Name())

	run, _ := typ.Method("Run")
	require.Len(t, run.Attributes(), 1)
	assert.Equal(t, []Attribute{deprecated}, typ.Attributes())
}

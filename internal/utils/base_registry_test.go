package utils

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRegistry(t *testing.T) {
	r := NewBaseRegistry[string, int]("numbers", "number name")
	r.SetValidator(ChainValidators(
		NotEmptyKeyValidator[int]("number name"),
		NoDuplicateValidator[string, int]("number name"),
	))

	require.NoError(t, r.Register("one", 1))
	require.NoError(t, r.Register("two", 2))

	err := r.Register("one", 11)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numbers registry: number name 'one' is already registered")

	err = r.Register("", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	v, ok := r.Get("two")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.GetOrError("three")
	assert.EqualError(t, err, "number name 'three' is not registered")

	keys := r.List()
	sort.Strings(keys)
	assert.Equal(t, []string{"one", "two"}, keys)
	assert.Equal(t, 2, r.Size())

	assert.True(t, r.Delete("one"))
	assert.False(t, r.Delete("one"))
	assert.False(t, r.Has("one"))
}

func TestDiagnosticLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystemWithWriters(DiagnosticInfo, &out, &errOut)

	d.Info("compiling %s", "Person")
	d.Verbose("hidden")
	d.Debug("hidden")
	d.Error("boom")
	d.Subsection("Fields")
	d.Indent()
	d.List("%s %s", "$Name", "string")
	d.Unindent()
	d.Summary("Done", map[string]interface{}{"b": 2, "a": 1})

	assert.Contains(t, out.String(), "[INFO] compiling Person")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "  - $Name string")
	assert.Less(t, strings.Index(out.String(), "a: 1"), strings.Index(out.String(), "b: 2"))
	assert.Equal(t, "[ERROR] boom\n", errOut.String())
}

func TestQuietDiagnostics(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystemWithWriters(DiagnosticError, &out, &errOut)

	d.Info("hidden")
	d.Warn("hidden")
	d.Section("hidden")
	d.Error("shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "shown")
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleManifest = `version: v1.0.0
types:
  - name: Person
    members:
      - {kind: property, name: Name, type: string}
      - {kind: redirect, name: Alias, target: Name}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIArgumentParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(peopleManifest), 0644))

	t.Run("help flag", func(t *testing.T) {
		stdout, _, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Usage:")
		assert.Contains(t, stdout, "compile")
		assert.Contains(t, stdout, "check")
		assert.Contains(t, stdout, "--strict-attributes")
	})

	t.Run("no arguments", func(t *testing.T) {
		_, _, err := execute(t, "compile")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires at least 1 arg")
	})

	t.Run("verbose and quiet conflict", func(t *testing.T) {
		_, _, err := execute(t, "--verbose", "--quiet", "compile", path)
		require.Error(t, err)
	})

	t.Run("nonexistent path", func(t *testing.T) {
		_, stderr, err := execute(t, "compile", filepath.Join(dir, "missing"))
		require.Error(t, err)
		assert.Contains(t, stderr, "failed to scan configuration")
	})

	t.Run("compile prints layouts", func(t *testing.T) {
		stdout, _, err := execute(t, "compile", "--disasm", dir)
		require.NoError(t, err)
		assert.Contains(t, stdout, "class Person")
		assert.Contains(t, stdout, "Alias string { get; set; }")
		assert.Contains(t, stdout, "ldfld")
		assert.Contains(t, stdout, "Types compiled: 1")
	})

	t.Run("check only reports", func(t *testing.T) {
		stdout, _, err := execute(t, "check", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "0 contract(s), 1 type(s)")
		assert.NotContains(t, stdout, "class Person")
	})

	t.Run("quiet mode", func(t *testing.T) {
		stdout, _, err := execute(t, "--quiet", "compile", path)
		require.NoError(t, err)
		assert.Empty(t, stdout)
	})
}

func TestCLIReportsBrokenManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v3.0.0\n"), 0644))

	_, stderr, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "ERROR: "+path)
	assert.Contains(t, stderr, "unsupported manifest version")
	assert.Contains(t, stderr, "1 of 1 manifest(s) failed")
}

func TestBuiltinsCommand(t *testing.T) {
	stdout, _, err := execute(t, "builtins")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Types:\n")
	assert.Contains(t, stdout, "  string\n")
	assert.Contains(t, stdout, "@json")
	assert.Contains(t, stdout, "@description")
}

func TestExampleManifests(t *testing.T) {
	stdout, stderr, err := execute(t, "--strict-attributes", "compile", "../../examples/manifests/...")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "class Book : Item, Lendable")
	assert.Contains(t, stdout, "Name string { get; set; }")
	assert.Contains(t, stdout, "@deprecated(reason=\"use Title\")")
	assert.Contains(t, stdout, "Featured Book { get; set; }")
	assert.Contains(t, stdout, "Contracts declared: 2")
	assert.Contains(t, stdout, "Types compiled: 2")
}

package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    DiagnosticLevel
		expected []string
		hidden   []string
	}{
		{
			name:     "error only",
			level:    DiagnosticError,
			expected: []string{"[ERROR] broken"},
			hidden:   []string{"[WARN]", "[INFO]", "[VERBOSE]", "[DEBUG]"},
		},
		{
			name:     "info",
			level:    DiagnosticInfo,
			expected: []string{"[ERROR] broken", "[WARN] careful", "[INFO] hello", "[SUCCESS] done"},
			hidden:   []string{"[VERBOSE]", "[DEBUG]"},
		},
		{
			name:     "debug",
			level:    DiagnosticDebug,
			expected: []string{"[VERBOSE] details", "[DEBUG] internals 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			d := NewDiagnosticSystemWithWriters(tt.level, &out, &errOut)

			d.Error("broken")
			d.Warn("careful")
			d.Info("hello")
			d.Success("done")
			d.Verbose("details")
			d.Debug("internals %d", 3)

			all := out.String() + errOut.String()
			for _, want := range tt.expected {
				assert.Contains(t, all, want)
			}
			for _, unwanted := range tt.hidden {
				assert.NotContains(t, all, unwanted)
			}
			assert.NotContains(t, out.String(), "[ERROR]", "errors go to the error writer")
		})
	}
}

func TestDiagnosticSystem_Layout(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystemWithWriters(DiagnosticInfo, &out, &out)

	d.Section("Title")
	d.Indent()
	d.Subsection("Part")
	d.List("item %d", 1)
	d.Block("line one\nline two")
	d.Unindent()
	d.Unindent()
	d.Summary("Totals", map[string]interface{}{"b": 2, "a": 1})

	assert.Equal(t, "Title\n"+
		"\n  Part:\n"+
		"  - item 1\n"+
		"      line one\n"+
		"      line two\n"+
		"\nTotals\n"+
		"   a: 1\n"+
		"   b: 2\n\n", out.String())
}

package cli

import (
	"fmt"
	"time"

	"github.com/toyz/dyntypes/internal/errors"
	"github.com/toyz/dyntypes/internal/manifest"
	"github.com/toyz/dyntypes/internal/utils"
)

// Compiler coordinates a CLI run over a set of manifests
type Compiler struct {
	scanner     *ManifestScanner
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	summary     CompileSummary
}

// CompileSummary contains information about a run
type CompileSummary struct {
	ManifestsProcessed int
	ManifestsFailed    int
	ContractsDeclared  int
	TypesCompiled      int
	Duration           time.Duration
}

// NewCompiler creates a compiler reporting through diagnostics and reporter
func NewCompiler(diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) *Compiler {
	return &Compiler{
		scanner:     NewManifestScanner(),
		reporter:    reporter,
		diagnostics: diagnostics,
	}
}

// Summary returns the summary of the last run
func (c *Compiler) Summary() CompileSummary {
	return c.summary
}

// Run compiles every manifest named by config.Paths. Failures are reported as
// they occur; the returned error only tells that at least one manifest failed.
func (c *Compiler) Run(config Config) error {
	start := time.Now()
	c.summary = CompileSummary{}
	defer func() { c.summary.Duration = time.Since(start) }()

	files, err := c.scanner.Scan(config.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.ConfigurationError("paths", "no manifest files found").
			WithSuggestion("Pass .yaml files, directories, or dir/... patterns")
	}
	c.diagnostics.Verbose("found %d manifest(s)", len(files))

	opts := manifest.Options{
		StrictAttributes: config.StrictAttributes,
		Diagnostics:      c.diagnostics,
	}
	for _, file := range files {
		c.summary.ManifestsProcessed++
		c.compileFile(file, opts, config)
	}

	if c.summary.ManifestsFailed > 0 {
		return errors.Newf(errors.CompilationErrorCode, "%d of %d manifest(s) failed",
			c.summary.ManifestsFailed, c.summary.ManifestsProcessed)
	}
	return nil
}

func (c *Compiler) compileFile(file string, opts manifest.Options, config Config) {
	c.diagnostics.Subsection(file)
	result, err := manifest.LoadAndCompile(file, opts)
	if result != nil {
		c.summary.ContractsDeclared += len(result.Contracts)
		c.summary.TypesCompiled += len(result.Types)
	}
	if err != nil {
		c.summary.ManifestsFailed++
		c.reporter.ReportError(file, err)
		return
	}

	if config.CheckOnly {
		c.diagnostics.Success("%s: %d contract(s), %d type(s)", file, len(result.Contracts), len(result.Types))
		return
	}
	for _, contract := range result.Contracts {
		c.diagnostics.Block(DescribeType(contract, false))
	}
	for _, t := range result.Types {
		c.diagnostics.Block(DescribeType(t, config.Disasm))
	}
}

// SummaryStats returns the summary as labelled values for DiagnosticSystem.Summary
func (s CompileSummary) SummaryStats() map[string]interface{} {
	return map[string]interface{}{
		"Manifests processed": s.ManifestsProcessed,
		"Manifests failed":    s.ManifestsFailed,
		"Contracts declared":  s.ContractsDeclared,
		"Types compiled":      s.TypesCompiled,
		"Duration":            fmt.Sprintf("%dms", s.Duration.Milliseconds()),
	}
}

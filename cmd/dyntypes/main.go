package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/dyntypes/internal/annotations"
	"github.com/toyz/dyntypes/internal/cli"
	"github.com/toyz/dyntypes/internal/manifest"
	"github.com/toyz/dyntypes/internal/utils"
)

type rootOptions struct {
	verbose          bool
	quiet            bool
	disasm           bool
	strictAttributes bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dyntypes",
		Short: "Compile type manifests into runtime-synthesized types",
		Long: `dyntypes compiles YAML type manifests into class types at runtime and
prints the layout of every type it produced.

Paths may name manifest files, directories, or Go-style patterns:
  ./manifests        Scan only the specific directory (no recursion)
  ./manifests/...    Scan the directory and all its subdirectories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only show errors and final results")
	flags.BoolVar(&opts.disasm, "disasm", false, "Print the instruction listing of every method")
	flags.BoolVar(&opts.strictAttributes, "strict-attributes", false, "Reject attributes without a registered schema")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newRunCmd(opts, "compile", "Compile manifests and print the layout of every type", false),
		newRunCmd(opts, "check", "Compile manifests and only report problems", true),
		newBuiltinsCmd(),
	)
	return root
}

func newRunCmd(opts *rootOptions, use, short string, checkOnly bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <paths...>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := cli.Config{
				Paths:            args,
				Verbose:          opts.verbose,
				Quiet:            opts.quiet,
				Disasm:           opts.disasm,
				StrictAttributes: opts.strictAttributes,
				CheckOnly:        checkOnly,
			}
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), config)
		},
	}
}

func run(stdout, stderr io.Writer, config cli.Config) error {
	diagnostics, reporter := newDiagnostics(stdout, stderr, config)

	diagnostics.Section("Type Manifest Compiler")
	if config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Paths: %s", strings.Join(config.Paths, ", "))
		diagnostics.List("Strict attributes: %t", config.StrictAttributes)
		diagnostics.List("Disassembly: %t", config.Disasm)
	}

	compiler := cli.NewCompiler(diagnostics, reporter)
	err := compiler.Run(config)
	diagnostics.Summary("Compilation Summary", compiler.Summary().SummaryStats())
	if err != nil {
		diagnostics.Error("%v", err)
		return err
	}
	diagnostics.Success("All manifests compiled")
	return nil
}

// newDiagnostics builds colored output for the process streams and plain
// output for any other writer.
func newDiagnostics(stdout, stderr io.Writer, config cli.Config) (*utils.DiagnosticSystem, *cli.DiagnosticReporter) {
	level := utils.DiagnosticInfo
	switch {
	case config.Quiet:
		level = utils.DiagnosticError
	case config.Verbose:
		level = utils.DiagnosticVerbose
	}

	if stdout == os.Stdout && stderr == os.Stderr {
		return utils.NewDiagnosticSystem(level), cli.NewDiagnosticReporter(config.Verbose)
	}
	return utils.NewDiagnosticSystemWithWriters(level, stdout, stderr),
		cli.NewDiagnosticReporterWithWriter(config.Verbose, stderr)
}

func newBuiltinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the predeclared type names and registered attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Types:")
			for _, name := range manifest.BuiltinTypeNames() {
				fmt.Fprintf(out, "  %s\n", name)
			}

			registry := annotations.DefaultRegistry()
			fmt.Fprintln(out, "Attributes:")
			for _, name := range registry.Names() {
				schema, _ := registry.Schema(name)
				fmt.Fprintf(out, "  @%-12s %s\n", name, schema.Description)
			}
			return nil
		},
	}
}

package cli

// Config holds the configuration of a CLI run
type Config struct {
	// Paths lists manifest files and directories. A directory ending in "/..."
	// is scanned recursively.
	Paths []string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only reports errors
	Quiet bool

	// Disasm prints the instruction listing of every method
	Disasm bool

	// StrictAttributes rejects attributes without a registered schema
	StrictAttributes bool

	// CheckOnly compiles without printing type layouts
	CheckOnly bool
}

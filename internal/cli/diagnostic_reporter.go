package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/dyntypes/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose   bool
	useColors bool
	out       io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:   verbose,
		useColors: !color.NoColor,
		out:       os.Stderr,
	}
}

// NewDiagnosticReporterWithWriter creates an uncolored reporter writing to out
func NewDiagnosticReporterWithWriter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

func (r *DiagnosticReporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !r.useColors {
		c.DisableColor()
	}
	return c
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.paint(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with its code, location, context and suggestions.
// Collections of errors are reported one by one.
func (r *DiagnosticReporter) ReportError(source string, err error) {
	header := "ERROR: Compilation Failed"
	if source != "" {
		header = fmt.Sprintf("ERROR: %s", source)
	}
	fmt.Fprintf(r.out, "\n")
	r.paint(color.FgRed, color.Bold).Fprintln(r.out, header)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", len(header)))

	if multi, ok := err.(*errors.MultipleErrors); ok && multi.Count() > 1 {
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "[%d/%d]\n", i+1, multi.Count())
			r.reportOne(e)
		}
		return
	}
	r.reportOne(err)
}

func (r *DiagnosticReporter) reportOne(err error) {
	se, ok := err.(errors.SynthError)
	if !ok {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
		return
	}

	title := codeTitle(innermostCode(err))
	r.paint(color.FgRed).Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", messageOf(err))
	if loc := se.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}

	switch causes := causesOf(err); len(causes) {
	case 0:
	case 1:
		fmt.Fprintf(r.out, "Cause: %s\n\n", causes[0])
	default:
		fmt.Fprintf(r.out, "Causes:\n")
		for i, c := range causes {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, c)
		}
		fmt.Fprintf(r.out, "\n")
	}

	if ctx := collectContext(err); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := collectSuggestions(err); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(err)
	}
}

// messageOf returns the message of err without location prefix and cause suffix
func messageOf(err error) string {
	switch e := err.(type) {
	case *errors.BaseError:
		return e.Message
	case *errors.MemberError:
		return e.Message
	case *errors.ValidationError:
		return e.Message
	case *errors.SyntaxError:
		return e.Message
	case *errors.SchemaError:
		return e.Message
	}
	return err.Error()
}

// innermostCode returns the code of the deepest SynthError in the chain
func innermostCode(err error) errors.ErrorCode {
	code := errors.UnknownErrorCode
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if se, ok := e.(errors.SynthError); ok {
			code = se.ErrorCode()
		}
	}
	return code
}

func codeTitle(code errors.ErrorCode) string {
	name := strings.TrimSuffix(code.String(), "Error")
	var words []string
	start := 0
	for i := 1; i < len(name); i++ {
		if name[i] >= 'A' && name[i] <= 'Z' {
			words = append(words, name[start:i])
			start = i
		}
	}
	words = append(words, name[start:])
	return strings.Join(words, " ") + " Error"
}

// causesOf returns the innermost failure of err. A collection of errors in
// the chain yields one cause per collected error.
func causesOf(err error) []string {
	for e := stderrors.Unwrap(err); e != nil; e = stderrors.Unwrap(e) {
		if multi, ok := e.(*errors.MultipleErrors); ok {
			causes := make([]string, 0, multi.Count())
			for _, c := range multi.Errors {
				causes = append(causes, c.Error())
			}
			return causes
		}
		if stderrors.Unwrap(e) == nil {
			return []string{e.Error()}
		}
	}
	return nil
}

// collectContext merges the context of every SynthError in the chain; outer
// errors win on key conflicts.
func collectContext(err error) map[string]interface{} {
	ctx := make(map[string]interface{})
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		se, ok := e.(errors.SynthError)
		if !ok {
			continue
		}
		if _, multi := e.(*errors.MultipleErrors); multi {
			continue
		}
		for k, v := range se.Context() {
			if _, exists := ctx[k]; !exists {
				ctx[k] = v
			}
		}
	}
	return ctx
}

// collectSuggestions gathers the suggestions of every SynthError in the
// chain, innermost first, without duplicates.
func collectSuggestions(err error) []string {
	var chain []errors.SynthError
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if se, ok := e.(errors.SynthError); ok {
			if _, multi := e.(*errors.MultipleErrors); !multi {
				chain = append(chain, se)
			}
		}
	}
	seen := make(map[string]bool)
	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, s := range chain[i].Suggestions() {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// printContext prints context information with the most useful keys first
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"type", "member", "contract", "phase", "method"}
	printed := make(map[string]bool)
	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	r.paint(color.FgGreen).Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// printErrorChain prints every error of the Unwrap chain in verbose mode
func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		code := "-"
		if se, ok := e.(errors.SynthError); ok {
			code = se.ErrorCode().String()
		}
		fmt.Fprintf(r.out, "   %d. [%s] %s\n", level, code, e.Error())
		level++
	}
	fmt.Fprintf(r.out, "\n")
}

package cli

import (
	"fmt"
	"strings"

	"github.com/toyz/dyntypes/pkg/dyntypes"
)

// DescribeType renders the layout of a compiled type. With disasm, every
// method body is listed below its signature.
func DescribeType(t *dyntypes.Type, disasm bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", t.Kind(), t.Name())
	if ifaces := t.Interfaces(); len(ifaces) > 0 {
		names := make([]string, len(ifaces))
		for i, iface := range ifaces {
			names[i] = iface.Name()
		}
		fmt.Fprintf(&b, " : %s", strings.Join(names, ", "))
	}
	b.WriteString("\n")
	writeAttributes(&b, "  ", t.Attributes())

	if fields := t.Fields(); len(fields) > 0 {
		b.WriteString("  fields:\n")
		for _, f := range fields {
			visibility := "private"
			if f.IsPublic() {
				visibility = "public"
			}
			fmt.Fprintf(&b, "    %d %s %s (%s)\n", f.Slot(), f.Name(), f.Type(), visibility)
			writeAttributes(&b, "      ", f.Attributes())
		}
	}

	if props := t.Properties(); len(props) > 0 {
		b.WriteString("  properties:\n")
		for _, p := range props {
			var accessors []string
			if p.CanRead() {
				accessors = append(accessors, "get;")
			}
			if p.CanWrite() {
				accessors = append(accessors, "set;")
			}
			fmt.Fprintf(&b, "    %s %s { %s }\n", p.Name(), p.Type(), strings.Join(accessors, " "))
			writeAttributes(&b, "      ", p.Attributes())
		}
	}

	if methods := t.Methods(); len(methods) > 0 {
		b.WriteString("  methods:\n")
		for _, m := range methods {
			fmt.Fprintf(&b, "    %s [%s]\n", m.Signature(), m.MethodAttributes())
			writeAttributes(&b, "      ", m.Attributes())
			if disasm && !m.IsAbstract() {
				for _, line := range strings.Split(m.Disassemble(), "\n") {
					fmt.Fprintf(&b, "      %s\n", line)
				}
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeAttributes(b *strings.Builder, indent string, attrs []dyntypes.Attribute) {
	for _, a := range attrs {
		fmt.Fprintf(b, "%s%s\n", indent, a)
	}
}

package dyntypes

import (
	"regexp"
	"strings"
)

// Naming conventions for compiler-generated members.
//
// A backing field is named by prefixing the property name with
// BackingFieldPrefix. The prefix is not valid in user supplied identifiers,
// so a backing field can never collide with a declared member.
const (
	BackingFieldPrefix = "$"
	GetterPrefix       = "get_"
	SetterPrefix       = "set_"
)

var identifierPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// IsIdentifier reports whether name is a valid member identifier
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// BackingFieldName returns the storage field name of property
func BackingFieldName(property string) string {
	return BackingFieldPrefix + property
}

// GetterName returns the special name of the getter of property
func GetterName(property string) string {
	return GetterPrefix + property
}

// SetterName returns the special name of the setter of property
func SetterName(property string) string {
	return SetterPrefix + property
}

// isMemberName accepts identifiers, optionally carrying the reserved backing field marker.
func isMemberName(name string) bool {
	return IsIdentifier(strings.TrimPrefix(name, BackingFieldPrefix))
}

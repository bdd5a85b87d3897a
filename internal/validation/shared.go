package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error reports every invalid field of a request, keyed by JSON field name.
type Error struct {
	Fields map[string]string
}

// Error lists the field messages in field order, so the same request always
// produces the same message.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

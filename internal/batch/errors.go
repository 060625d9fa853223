package batch

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a validation failure. Every kind is recoverable: callers
// surface the message and leave the selection and form state untouched so
// the user can correct and resubmit.
type Kind string

const (
	EmptySelection       Kind = "EMPTY_SELECTION"
	MixedSymbols         Kind = "MIXED_SYMBOLS"
	MissingRequiredField Kind = "MISSING_REQUIRED_FIELD"
	InvalidField         Kind = "INVALID_FIELD"
	NothingToModify      Kind = "NOTHING_TO_MODIFY"
	MasterIsChild        Kind = "MASTER_IS_CHILD"
	NoMembersSelected    Kind = "NO_MEMBERS_SELECTED"
)

// Error is a validation failure with enough structure for the caller to
// render a precise message. Keys carries per-row diagnostics for
// MixedSymbols ("SYMBOL → KEY" per selected row).
type Error struct {
	Kind   Kind
	Field  string
	Detail string
	Keys   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if len(e.Keys) > 0 {
		b.WriteString("\n" + strings.Join(e.Keys, "\n"))
	}
	return b.String()
}

// KindOf extracts the validation kind from an error chain, or "" when the
// error is not a validation failure.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func errKind(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

func errField(k Kind, field, detail string) *Error {
	return &Error{Kind: k, Field: field, Detail: detail}
}

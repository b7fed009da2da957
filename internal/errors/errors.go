// Package errors defines typed errors with a machine-readable kind so the
// CLI can log failures with a stable category next to the message.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// UnsupportedMaster indicates a master URL the session cannot run against.
	UnsupportedMaster Kind = "unsupported_master"
	// PackageUnresolved indicates a package coordinate that could not be resolved.
	PackageUnresolved Kind = "package_unresolved"
	// FormatNotFound indicates a read format with no connector in the session.
	FormatNotFound Kind = "format_not_found"
	// MissingOption indicates a connector option that must be set.
	MissingOption Kind = "missing_option"
	// NoLocators indicates a load call without any resource locator.
	NoLocators Kind = "no_locators"
	// SourceUnreachable indicates a locator that could not be opened.
	SourceUnreachable Kind = "source_unreachable"
	// TreeNotFound indicates the named tree is absent from the file.
	TreeNotFound Kind = "tree_not_found"
	// NotATree indicates the named object exists but is not a tree.
	NotATree Kind = "not_a_tree"
	// InvalidLogLevel indicates an unknown engine log level name.
	InvalidLogLevel Kind = "invalid_log_level"
	// InvalidCount indicates a connector reported a negative record count.
	InvalidCount Kind = "invalid_count"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

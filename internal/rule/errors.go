package rule

import (
	"errors"
	"fmt"

	"soundlaw/internal/diag"
	"soundlaw/internal/source"
)

// ErrNotCompiled is returned when a rule is used before a catalog has been
// bound to it.
var ErrNotCompiled = errors.New("rule is not compiled against a catalog")

// ErrNoCatalog is returned by Compile when no catalog is given.
var ErrNoCatalog = errors.New("compile needs a phoneme catalog")

// ErrCatalogMismatch is returned by BindPrecompiled when the stored form
// was produced against a different catalog.
var ErrCatalogMismatch = errors.New("compiled form was produced against a different catalog")

// FormatError describes a malformed rule. The same problem is also reported
// through the diag.Reporter during parsing; the error form exists for
// callers driving the package directly.
type FormatError struct {
	Code    diag.Code
	Span    source.Span
	Message string
}

func (e *FormatError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Message)
}

// ConflictError reports a before window produced by two target/environment
// combinations that disagree on the after window.
type ConflictError struct {
	Before string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("window %q maps to both %q and %q", e.Before, e.First, e.Second)
}

// AlignmentError reports replacement alternatives that cannot be paired
// with the target-environment combinations.
type AlignmentError struct {
	Replacements int
	Combinations int
}

func (e *AlignmentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d replacement alternatives for %d target-environment combinations; need 1 or exactly %d",
		e.Replacements, e.Combinations, e.Combinations)
}

// ExpansionLimitError reports an expansion that exceeded the configured
// ceiling before it was materialized.
type ExpansionLimitError struct {
	Size  uint64
	Limit int
}

func (e *ExpansionLimitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("expansion needs %d combinations, limit is %d", e.Size, e.Limit)
}

// EmptyWindowError reports a change whose before window is empty, which
// would rewrite at every position of every word.
type EmptyWindowError struct {
	After string
}

func (e *EmptyWindowError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("empty match window (would insert %q everywhere); give the rule an environment", e.After)
}

// AbbrevKeyError reports an abbreviation key that is not a single
// uppercase letter.
type AbbrevKeyError struct {
	Key string
}

func (e *AbbrevKeyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("abbreviation key %q must be a single uppercase letter", e.Key)
}

// AbbrevConflictError reports an abbreviation that shadows a built-in.
type AbbrevConflictError struct {
	Key string
}

func (e *AbbrevConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("abbreviation %q shadows a built-in shorthand", e.Key)
}

// AbbrevValueError reports an expansion that would break the rule grammar
// once substituted into the text.
type AbbrevValueError struct {
	Key   string
	Value string
}

func (e *AbbrevValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("abbreviation %q expands to %q, which cannot appear inside a rule", e.Key, e.Value)
}

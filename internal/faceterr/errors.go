// Package faceterr defines the error taxonomy of the build pipeline. Every
// failure a build can surface is one of these types, so callers can branch
// with errors.As instead of string matching.
package faceterr

import (
	"fmt"
	"strings"
)

// StructuralError reports a malformed hook or facet: a hook without a kind,
// a facet whose kind does not match its producing hook, or a facet with no
// kind at all.
type StructuralError struct {
	Kind   string
	Source string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("structural error (source %s): %s", orUnknown(e.Source), e.Reason)
	}
	return fmt.Sprintf("structural error in %q (source %s): %s", e.Kind, orUnknown(e.Source), e.Reason)
}

// DependencyError reports an unresolvable requirement: a missing facet kind,
// or an overwrite hook that has no predecessor to overwrite.
type DependencyError struct {
	Kind    string
	Source  string
	Missing string
	Reason  string
}

func (e *DependencyError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("dependency error in %q (source %s): required facet %q is not provided", e.Kind, orUnknown(e.Source), e.Missing)
	}
	return fmt.Sprintf("dependency error in %q (source %s): %s", e.Kind, orUnknown(e.Source), e.Reason)
}

// CycleError reports that the dependency graph could not be fully ordered.
// Stuck holds the kinds left unresolved, in insertion order.
type CycleError struct {
	Stuck []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected involving: %s", strings.Join(e.Stuck, ", "))
}

// ContractError reports a facet that failed its declared contract: the
// contract name is unregistered, a required method or property is missing,
// or the contract's custom validator rejected the facet.
type ContractError struct {
	Contract string
	Kind     string
	Source   string
	Reason   string
	Err      error
}

func (e *ContractError) Error() string {
	msg := fmt.Sprintf("contract %q violated by facet %q (source %s): %s", e.Contract, e.Kind, orUnknown(e.Source), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ContractError) Unwrap() error { return e.Err }

// DuplicateKindError reports two producers of the same kind where neither
// the later hook nor the later facet permits overwriting.
type DuplicateKindError struct {
	Kind         string
	FirstSource  string
	SecondSource string
}

func (e *DuplicateKindError) Error() string {
	return fmt.Sprintf("duplicate facet kind %q: produced by both %s and %s, and neither permits overwrite",
		e.Kind, orUnknown(e.FirstSource), orUnknown(e.SecondSource))
}

// InitializationError wraps a failure from a facet's Init callback. It is the
// only error class raised during the transactional execute phase; by the time
// the caller sees it, the whole batch has been rolled back.
type InitializationError struct {
	Kind   string
	Source string
	Err    error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization of facet %q (source %s) failed: %v", e.Kind, orUnknown(e.Source), e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

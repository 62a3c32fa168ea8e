// Package cds implements a typed, hierarchical, self-describing container
// for scientific datasets: groups, dimensions, attributes and variables,
// with incremental sample allocation, data-type conversion, missing-value
// mapping and a text-based transformation-parameter store.
package cds

import "github.com/cockroachdb/errors"

// Failure kinds. Every error returned by this package wraps exactly one of
// these sentinels; check with errors.Is.
var (
	// ErrLocked reports a structural mutation attempted on an object whose
	// definition lock (or an ancestor's) is set.
	ErrLocked = errors.New("definition is locked")

	// ErrConflictingDefinition reports a define call whose name collides
	// with an existing sibling of incompatible definition.
	ErrConflictingDefinition = errors.New("conflicting definition")

	// ErrNotFound reports a lookup miss for an operation that requires the
	// entity to exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports a violated precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocation reports a failed or impossible buffer growth.
	ErrAllocation = errors.New("allocation failed")

	// ErrIncompatibleUnits reports two unit strings with no known
	// scale/offset between them.
	ErrIncompatibleUnits = errors.New("incompatible units")

	// ErrParse reports malformed transform-parameter or array text.
	ErrParse = errors.New("parse error")

	// ErrUnknownType reports a data type name or value outside the closed
	// set this package defines.
	ErrUnknownType = errors.New("unknown data type")
)

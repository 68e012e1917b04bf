package grouping

import "errors"

var (
	ErrEmptyRoster       = errors.New("roster is empty")
	ErrRosterTooSmall    = errors.New("roster cannot be split into groups of three to five")
	ErrInvalidFrontLimit = errors.New("maximum front groups must not be negative")
	ErrDuplicateStudent  = errors.New("duplicate student id in roster")
	ErrUnknownStudent    = errors.New("incompatibility references a student outside the roster")

	// ErrInfeasible is returned when the attempt budget runs out without a
	// partition that places everyone and respects the front group limit.
	ErrInfeasible = errors.New("could not find a valid assignment")

	// ErrBudgetExceeded is returned when the caller's context ends first.
	ErrBudgetExceeded = errors.New("assignment budget exceeded")

	// ErrInvalidPartition is returned by Check.
	ErrInvalidPartition = errors.New("invalid partition")
)

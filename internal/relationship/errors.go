// internal/relationship/errors.go
package relationship

import "errors"

var (
	// ErrInvalidRole indicates the acting member's role does not permit the
	// privileged lobby action.
	ErrInvalidRole = errors.New("relationship: invalid role")

	// ErrInconsistentState indicates the second half of a dual-write could
	// not locate the counterpart entry the first half implies. It is kept
	// distinct from a plain not-found so "never existed" and "drifted" stay
	// distinguishable to operators.
	ErrInconsistentState = errors.New("relationship: inconsistent state")
)

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

var (
	// ErrExhaustedAttempts is wrapped by ExhaustedAttemptsError.
	ErrExhaustedAttempts = errors.New("exhausted attempts")

	// ErrExhaustedEnumeration is wrapped by ExhaustedEnumerationError.
	ErrExhaustedEnumeration = errors.New("exhausted enumeration")

	// ErrRepairIncomplete is wrapped by RepairIncompleteError.
	ErrRepairIncomplete = errors.New("repair incomplete")
)

// ExhaustedAttemptsError reports an item the randomized strategy could not
// satisfy within its attempt bound. The item is left unassigned; the run
// continues with the next item.
type ExhaustedAttemptsError struct {
	Owner    pattern.Owner
	Rule     tier.Rule
	Attempts int
}

func (e *ExhaustedAttemptsError) Error() string {
	return fmt.Sprintf("could not find a unique %s pattern for %s after %d attempts", e.Rule, e.Owner, e.Attempts)
}

func (e *ExhaustedAttemptsError) Unwrap() error {
	return ErrExhaustedAttempts
}

// ExhaustedEnumerationError reports that a precomputed pattern pool ran out
// before every item of its rule was served. It aborts the run.
type ExhaustedEnumerationError struct {
	Owner pattern.Owner
	Rule  tier.Rule
	Size  uint64
}

func (e *ExhaustedEnumerationError) Error() string {
	return fmt.Sprintf("ran out of %s patterns at %s (pool size %d)", e.Rule, e.Owner, e.Size)
}

func (e *ExhaustedEnumerationError) Unwrap() error {
	return ErrExhaustedEnumeration
}

// RepairIncompleteError reports collisions still present after a repair.
type RepairIncompleteError struct {
	Remaining []Duplicate
}

func (e *RepairIncompleteError) Error() string {
	owners := make([]string, 0, len(e.Remaining))
	for _, d := range e.Remaining {
		owners = append(owners, fmt.Sprintf("%s == %s", d.First, d.Colliding))
	}
	return fmt.Sprintf("repair left %d duplicate(s): %s", len(e.Remaining), strings.Join(owners, ", "))
}

func (e *RepairIncompleteError) Unwrap() error {
	return ErrRepairIncomplete
}

// IsExhaustedAttempts returns true if err is or wraps an ExhaustedAttemptsError.
func IsExhaustedAttempts(err error) bool {
	return errors.Is(err, ErrExhaustedAttempts)
}

// IsExhaustedEnumeration returns true if err is or wraps an ExhaustedEnumerationError.
func IsExhaustedEnumeration(err error) bool {
	return errors.Is(err, ErrExhaustedEnumeration)
}

// IsRepairIncomplete returns true if err is or wraps a RepairIncompleteError.
func IsRepairIncomplete(err error) bool {
	return errors.Is(err, ErrRepairIncomplete)
}

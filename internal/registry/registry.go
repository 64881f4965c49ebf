// Package registry implements the uniqueness registry: the set of canonical
// keys already committed during one assignment run.
//
// Two backends are provided. Memory keeps the set in process and is the
// default. Redis keeps it in a namespaced Redis SET so long runs can be
// inspected from outside the process.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/altar/pkg/pattern"
)

// ErrDuplicateKey is the sentinel wrapped by DuplicateKeyError.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError reports an attempt to insert a key that is already
// registered. It signals a broken invariant and must never be ignored.
type DuplicateKeyError struct {
	Key        pattern.Key
	Owner      *pattern.Owner // item whose insert failed, when known
	FirstOwner *pattern.Owner // item that registered the key first, when known
}

func (e *DuplicateKeyError) Error() string {
	msg := fmt.Sprintf("duplicate key %s", e.Key)
	if e.Owner != nil {
		msg += fmt.Sprintf(" for %s", e.Owner)
	}
	if e.FirstOwner != nil {
		msg += fmt.Sprintf(" (already owned by %s)", e.FirstOwner)
	}
	return msg
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// IsDuplicateKey returns true if err is or wraps a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// Registry is a grow-only set of canonical keys.
type Registry interface {
	// Contains reports whether key has been registered.
	Contains(ctx context.Context, key pattern.Key) (bool, error)

	// Insert registers key. It returns a *DuplicateKeyError if the key is
	// already present; callers are expected to check Contains first.
	Insert(ctx context.Context, key pattern.Key) error

	// Len returns the number of registered keys.
	Len(ctx context.Context) (int, error)
}

// Seed inserts the key of every pattern in a. It fails with a
// *DuplicateKeyError naming both owners if a already holds a collision, so
// pre-existing corruption surfaces instead of being masked.
func Seed(ctx context.Context, r Registry, a *pattern.Assignment) error {
	owners := make(map[pattern.Key]pattern.Owner, a.Len())

	var seedErr error
	a.Each(func(owner pattern.Owner, p pattern.Pattern) bool {
		key := pattern.Canonicalize(p)
		if err := r.Insert(ctx, key); err != nil {
			var dup *DuplicateKeyError
			if errors.As(err, &dup) {
				o := owner
				dup.Owner = &o
				if first, ok := owners[key]; ok {
					dup.FirstOwner = &first
				}
			}
			seedErr = fmt.Errorf("failed to seed registry: %w", err)
			return false
		}
		owners[key] = owner
		return true
	})

	return seedErr
}

// Memory is an in-process Registry. It is not safe for concurrent use.
type Memory struct {
	keys map[pattern.Key]struct{}
}

// NewMemory returns an empty in-process registry.
func NewMemory() *Memory {
	return &Memory{keys: make(map[pattern.Key]struct{})}
}

// Contains implements Registry.
func (m *Memory) Contains(_ context.Context, key pattern.Key) (bool, error) {
	_, ok := m.keys[key]
	return ok, nil
}

// Insert implements Registry.
func (m *Memory) Insert(_ context.Context, key pattern.Key) error {
	if _, ok := m.keys[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	m.keys[key] = struct{}{}
	return nil
}

// Len implements Registry.
func (m *Memory) Len(_ context.Context) (int, error) {
	return len(m.keys), nil
}

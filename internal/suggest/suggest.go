// Package suggest provides the query-rewrite suggestion backend used by
// autofix. Absence of a configured backend is a typed state (Disabled),
// not a nil check.
package suggest

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Disabled: no suggestion backend has
// been configured for this deployment.
var ErrNotConfigured = errors.New("suggestion backend not configured")

// Suggester proposes a replacement query for a drifting detection rule.
type Suggester interface {
	Propose(ctx context.Context, query string) (string, error)
}

// Disabled is the Suggester used when no backend is configured. Every
// call fails with ErrNotConfigured.
type Disabled struct{}

func (Disabled) Propose(ctx context.Context, query string) (string, error) {
	return "", ErrNotConfigured
}

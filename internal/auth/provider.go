// Package auth adapts external identity providers. Handlers and services never
// parse tokens themselves; they receive the user id a TokenProvider resolved.
package auth

import "context"

// TokenProvider issues and verifies bearer tokens for local user ids.
type TokenProvider interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Verify(ctx context.Context, token string) (uint, error)
}

package auth

import "context"

// Identity is what an external provider asserts about the holder of a token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityVerifier checks a provider token and returns the identity behind it,
// without requiring a local account to exist yet.
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, idToken string) (*Identity, error)
}

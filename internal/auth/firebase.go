package auth

import (
	"context"
	"errors"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
)

// IDTokenVerifier is the part of the Firebase Admin auth client we depend on.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// UserByFirebaseUID resolves a Firebase UID to the local account.
type UserByFirebaseUID interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseProvider verifies Firebase ID tokens. Firebase owns token issuance, so
// Issue is not supported.
type FirebaseProvider struct {
	verifier IDTokenVerifier
	users    UserByFirebaseUID
}

func NewFirebaseProvider(verifier IDTokenVerifier, users UserByFirebaseUID) *FirebaseProvider {
	return &FirebaseProvider{verifier: verifier, users: users}
}

var _ TokenProvider = (*FirebaseProvider)(nil)

var ErrIssueUnsupported = errors.New("auth: tokens are issued by Firebase")

func (p *FirebaseProvider) Issue(context.Context, uint) (string, error) {
	return "", ErrIssueUnsupported
}

var _ IdentityVerifier = (*FirebaseProvider)(nil)

// VerifyIdentity checks the ID token and reads the email and display name claims.
func (p *FirebaseProvider) VerifyIdentity(ctx context.Context, idToken string) (*Identity, error) {
	token, err := p.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired ID token")
	}
	identity := &Identity{UID: token.UID}
	identity.Email, _ = token.Claims["email"].(string)
	identity.EmailVerified, _ = token.Claims["email_verified"].(bool)
	identity.Name, _ = token.Claims["name"].(string)
	return identity, nil
}

// Verify resolves the token to the local account linked to its Firebase UID.
func (p *FirebaseProvider) Verify(ctx context.Context, idToken string) (uint, error) {
	identity, err := p.VerifyIdentity(ctx, idToken)
	if err != nil {
		return 0, err
	}
	user, err := p.users.GetUserByFirebaseUID(ctx, identity.UID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, apperror.Unauthorized("no local account for this Firebase user")
		}
		return 0, err
	}
	return user.ID, nil
}

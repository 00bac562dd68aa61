package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// UserService registers accounts, checks credentials and manages profiles.
type UserService struct {
	users      repositories.UserRepository
	follows    repositories.FollowRepository
	tokens     auth.TokenProvider
	identities auth.IdentityVerifier
	log        logrus.FieldLogger
}

func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository, tokens auth.TokenProvider, log logrus.FieldLogger) *UserService {
	return &UserService{users: users, follows: follows, tokens: tokens, log: log}
}

// WithIdentityVerifier enables FirebaseLogin. Without one, FirebaseLogin is refused.
func (s *UserService) WithIdentityVerifier(v auth.IdentityVerifier) *UserService {
	s.identities = v
	return s
}

// Session is what register and login hand back to the client.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"access,omitempty"`
}

// Register creates a local account. Username is trimmed and email lower-cased
// before the uniqueness checks.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if req.Password != req.Password2 {
		return nil, apperror.ValidationFailed("password", "passwords do not match")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("user", "username already in use")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user", "email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")

	return s.session(ctx, user)
}

// Login looks the user up by credential and issues a token.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user.Password == "" || !auth.CheckPassword(user.Password, password) {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	return s.session(ctx, user)
}

// session issues a token for user. Providers that do not issue tokens (Firebase)
// yield a session without one; the client keeps using its provider token.
func (s *UserService) session(ctx context.Context, user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(ctx, user.ID)
	if errors.Is(err, auth.ErrIssueUnsupported) {
		return &Session{User: *user}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{User: *user, Token: token}, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.UserSummary, error) {
	return s.users.GetUserSummary(ctx, userID)
}

// ViewProfile returns userID's profile and whether viewerID follows them.
func (s *UserService) ViewProfile(ctx context.Context, viewerID, userID uint) (*models.ProfileView, error) {
	summary, err := s.users.GetUserSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &models.ProfileView{UserSummary: *summary}
	if viewerID != userID {
		if view.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, fmt.Errorf("checking follow: %w", err)
		}
	}
	return view, nil
}

// UpdateProfile applies the non-nil fields of req to the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.UserSummary, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = strings.TrimSpace(*req.ProfilePictureURL)
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return s.users.GetUserSummary(ctx, userID)
}

// FirebaseLogin signs in the holder of a Firebase ID token. The local account is
// found by Firebase UID; failing that, an account with the same verified email is
// linked; otherwise a new account is created.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*Session, error) {
	if s.identities == nil {
		return nil, apperror.Forbidden("firebase login is not enabled")
	}
	identity, err := s.identities.VerifyIdentity(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, identity.UID)
	if err == nil {
		return s.session(ctx, user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up firebase user: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "firebase account has no email address")
	}
	uid := identity.UID

	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !identity.EmailVerified {
			return nil, apperror.Conflict("user", "email already registered")
		}
		if user.FirebaseUID != nil {
			return nil, apperror.Conflict("user", "email is linked to another firebase account")
		}
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("linking firebase account: %w", err)
		}
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "firebase_uid": uid}).Info("firebase account linked")
		return s.session(ctx, user)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking email: %w", err)
	}

	username, err := s.freeUsername(ctx, email, uid)
	if err != nil {
		return nil, err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(identity.Name), " ")
	user = &models.User{
		Username:    username,
		Email:       email,
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username, "firebase_uid": uid}).Info("user registered via firebase")
	return s.session(ctx, user)
}

// freeUsername derives a username from the email's local part, falling back to a
// suffix taken from the Firebase UID when the plain one is taken.
func (s *UserService) freeUsername(ctx context.Context, email, uid string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := usernameFrom(local)
	suffix := strings.ToLower(uid)
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}

	for _, candidate := range []string{base, base + "-" + suffix} {
		_, err := s.users.GetUserByUsername(ctx, candidate)
		if errors.Is(err, apperror.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking username: %w", err)
		}
	}
	return "", apperror.Conflict("user", "no free username for this account")
}

func usernameFrom(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > 120 {
		name = name[:120]
	}
	if len(name) < 3 {
		name = "user" + name
	}
	return name
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "social-api"

// JWTProvider signs HS256 tokens whose subject is the local user id.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTProvider creates a JWTProvider. The secret must be at least 16 bytes.
func NewJWTProvider(secret string, ttl time.Duration) (*JWTProvider, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &JWTProvider{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

var _ TokenProvider = (*JWTProvider)(nil)

func (p *JWTProvider) Issue(_ context.Context, userID uint) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) Verify(_ context.Context, tokenStr string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperror.Unauthorized("token has expired")
		}
		return 0, apperror.Unauthorized("invalid token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Unauthorized("invalid token subject")
	}
	return uint(id), nil
}

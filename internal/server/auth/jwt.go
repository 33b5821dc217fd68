// Package auth mints and verifies the signed session tokens handed to
// clients. Tokens are stateless HS256 JWTs: validity rests on signature and
// expiry only, nothing is stored server-side.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind separates access tokens from refresh tokens so one can not be
// presented in place of the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the token payload: the registered claims plus the user id and
// token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Kind   Kind   `json:"kind"`
}

// TokenPair bundles a short-lived access token and a longer-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// GenerateToken signs a token of the given kind for userID, valid for
// validityDuration starting at now.
func GenerateToken(userID string, kind Kind, secretKey []byte, validityDuration time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Kind:   kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns the user id it carries.
// Every failure matches common.ErrInvalidToken; expiry additionally matches
// common.ErrTokenExpired.
func ParseToken(tokenString string, kind Kind, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// Issuer issues and verifies token pairs with a shared secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      func() time.Time
}

// NewIssuer builds an Issuer using the wall clock.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, clock: time.Now}
}

// WithClock replaces the time source, used by tests to move across expiry.
func (i *Issuer) WithClock(clock func() time.Time) *Issuer {
	i.clock = clock
	return i
}

// RefreshTTL is the lifetime of issued refresh tokens. The transport uses it
// for the refresh cookie so both expire together.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// Issue signs a fresh access/refresh pair for userID.
func (i *Issuer) Issue(userID string) (*TokenPair, error) {
	now := i.clock()

	access, err := GenerateToken(userID, KindAccess, i.secret, i.accessTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := GenerateToken(userID, KindRefresh, i.secret, i.refreshTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyRefresh returns the user id of a valid, unexpired refresh token.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	return ParseToken(token, KindRefresh, i.secret, i.clock())
}

// VerifyAccess returns the user id of a valid, unexpired access token.
func (i *Issuer) VerifyAccess(token string) (string, error) {
	return ParseToken(token, KindAccess, i.secret, i.clock())
}

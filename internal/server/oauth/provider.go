// Package oauth performs the upstream OAuth handshake and turns it into an
// authenticated external identity. Mapping that identity to a local user is
// done by the services package.
package oauth

import (
	"context"
	"errors"
)

var (
	ErrExchange        = errors.New("oauth code exchange failed")
	ErrUserInfo        = errors.New("oauth user info request failed")
	ErrUnverifiedEmail = errors.New("oauth email is missing or not verified")
)

// Identity is an externally authenticated user.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Provider is one upstream identity provider using the authorization code
// flow with PKCE.
type Provider interface {
	Name() string
	// AuthCodeURL returns the consent page URL for state and the PKCE verifier.
	AuthCodeURL(state, verifier string) string
	// Exchange trades the callback code for the user's identity.
	Exchange(ctx context.Context, code, verifier string) (*Identity, error)
}

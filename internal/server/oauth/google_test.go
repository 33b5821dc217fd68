package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoogle struct {
	userInfo   map[string]any
	userStatus int
	gotCode    string
	gotVerify  string
}

func (f *fakeGoogle) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.gotCode = r.Form.Get("code")
		f.gotVerify = r.Form.Get("code_verifier")
		if f.gotCode != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(srv *httptest.Server) *GoogleProvider {
	return NewGoogleProvider("client-id", "client-secret", "http://localhost:3000/auth/google/callback").
		WithEndpoints(srv.URL+"/auth", srv.URL+"/token", srv.URL+"/userinfo")
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "client-secret", "http://localhost:3000/auth/google/callback")

	raw := p.AuthCodeURL("state-1", NewVerifier())
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Equal(t, "google", p.Name())
}

func TestGoogleProvider_Exchange(t *testing.T) {
	f := &fakeGoogle{userInfo: map[string]any{
		"email":          "Alice@X.com",
		"email_verified": true,
		"name":           "Alice",
		"picture":        "https://img.example/alice.png",
	}}
	p := newTestProvider(f.server(t))

	id, err := p.Exchange(context.Background(), "good-code", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Email: "alice@x.com", Name: "Alice", Picture: "https://img.example/alice.png"}, id)
	assert.Equal(t, "verifier-1", f.gotVerify)
}

func TestGoogleProvider_ExchangeBadCode(t *testing.T) {
	f := &fakeGoogle{}
	p := newTestProvider(f.server(t))

	_, err := p.Exchange(context.Background(), "bad-code", "v")
	assert.ErrorIs(t, err, ErrExchange)
}

func TestGoogleProvider_UnverifiedEmail(t *testing.T) {
	f := &fakeGoogle{userInfo: map[string]any{"email": "a@x.com", "email_verified": false}}
	p := newTestProvider(f.server(t))

	_, err := p.Exchange(context.Background(), "good-code", "v")
	assert.ErrorIs(t, err, ErrUnverifiedEmail)
}

func TestGoogleProvider_UserInfoFailure(t *testing.T) {
	f := &fakeGoogle{userStatus: http.StatusInternalServerError}
	p := newTestProvider(f.server(t))

	_, err := p.Exchange(context.Background(), "good-code", "v")
	assert.ErrorIs(t, err, ErrUserInfo)
}

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
	"github.com/dmitrijs2005/shopauth/internal/server/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	us := &fakeUsers{res: okResult()}
	s := newTestServer(us, nil)

	rec := do(t, s.Router(), jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1","name":"ignored"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "at-1", body["accessToken"])
	assert.Equal(t, "rt-1", body["refreshToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.NotContains(t, user, "PasswordHash")
	assert.Equal(t, []any{}, user["orders"])

	assert.Equal(t, "a@x.com", us.gotEmail)
	assert.Equal(t, "secret1", us.gotPassword)

	c := findCookie(rec, "refreshToken")
	require.NotNil(t, c)
	assert.Equal(t, "rt-1", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, "localhost", c.Domain)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.Expires.Equal(testNow.Add(s.config.RefreshTokenValidityDuration)), "expires %v", c.Expires)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		code    int
		message string
	}{
		{"unknown email", `{"email":"b@x.com","password":"secret1"}`, common.ErrorNotFound, http.StatusNotFound, "User not found"},
		{"wrong password", `{"email":"a@x.com","password":"secret1"}`, common.ErrorUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"store failure", `{"email":"a@x.com","password":"secret1"}`, fmt.Errorf("db error: %w", errString("down")), http.StatusInternalServerError, "Internal server error"},
		{"bad email", `{"email":"nope","password":"secret1"}`, nil, http.StatusBadRequest, "email must be an email"},
		{"short password", `{"email":"a@x.com","password":"123"}`, nil, http.StatusBadRequest, "password must be longer than or equal to 6 characters"},
		{"missing password", `{"email":"a@x.com"}`, nil, http.StatusBadRequest, "password should not be empty"},
		{"malformed json", `{`, nil, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeUsers{err: tt.err}, nil)

			rec := do(t, s.Router(), jsonRequest(http.MethodPost, "/auth/login", tt.body))
			assert.Equal(t, tt.code, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.code, e.StatusCode)
			assert.Contains(t, e.Message, tt.message)
			assert.Nil(t, findCookie(rec, "refreshToken"))
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestRegister(t *testing.T) {
	us := &fakeUsers{res: okResult()}
	s := newTestServer(us, nil)

	rec := do(t, s.Router(), jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"secret1","name":"Alice"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", us.gotRegister.Name)
	assert.NotNil(t, findCookie(rec, "refreshToken"))

	us.err = common.ErrorConflict
	rec = do(t, s.Router(), jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"secret1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errorResponse{Message: "User exists", StatusCode: 400}, decodeError(t, rec))
}

func TestGetNewTokens(t *testing.T) {
	t.Run("from cookie", func(t *testing.T) {
		us := &fakeUsers{res: okResult()}
		s := newTestServer(us, nil)

		req := jsonRequest(http.MethodPost, "/auth/login/access-token", `{"refreshToken":"from-body"}`)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})

		rec := do(t, s.Router(), req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "from-cookie", us.gotRefresh)
		assert.Equal(t, "rt-1", findCookie(rec, "refreshToken").Value)
	})

	t.Run("from body", func(t *testing.T) {
		us := &fakeUsers{res: okResult()}
		s := newTestServer(us, nil)

		rec := do(t, s.Router(), jsonRequest(http.MethodPost, "/auth/login/access-token", `{"refreshToken":"from-body"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "from-body", us.gotRefresh)
	})

	t.Run("missing", func(t *testing.T) {
		s := newTestServer(&fakeUsers{}, nil)

		rec := do(t, s.Router(), httptest.NewRequest(http.MethodPost, "/auth/login/access-token", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
		s := newTestServer(&fakeUsers{err: err}, nil)

		req := httptest.NewRequest(http.MethodPost, "/auth/login/access-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "bad"})

		rec := do(t, s.Router(), req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		c := findCookie(rec, "refreshToken")
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
	})

	t.Run("user gone", func(t *testing.T) {
		s := newTestServer(&fakeUsers{err: common.ErrorNotFound}, nil)

		req := httptest.NewRequest(http.MethodPost, "/auth/login/access-token", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "rt"})

		rec := do(t, s.Router(), req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	s := newTestServer(&fakeUsers{}, nil)

	rec := do(t, s.Router(), httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Body.String())

	c := findCookie(rec, "refreshToken")
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestProfile(t *testing.T) {
	us := &fakeUsers{
		access:  map[string]string{"good": "u1"},
		profile: &models.User{ID: "u1", Email: "a@x.com"},
	}
	s := newTestServer(us, nil)
	r := s.Router()

	rec := do(t, r, httptest.NewRequest(http.MethodGet, "/users/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = do(t, r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", us.gotProfile)

	us.profileErr = common.ErrorNotFound
	rec = do(t, r, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeUsers{}, nil)
	r := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	rec := do(t, r, req)
	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "set-cookie", rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	rec = do(t, r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = do(t, r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = do(t, r, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGoogleAuth_Disabled(t *testing.T) {
	s := newTestServer(&fakeUsers{}, nil)

	rec := do(t, s.Router(), httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Router(), httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state=s", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoogleAuth_Start(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeProvider{})

	rec := do(t, s.Router(), httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	state := findCookie(rec, oauthStateCookie)
	require.NotNil(t, state)
	assert.Len(t, state.Value, 32)
	assert.NotEmpty(t, findCookie(rec, oauthVerifierCookie).Value)
	assert.Equal(t, "https://provider.example/auth?state="+state.Value, rec.Header().Get("Location"))
}

func callbackRequest(query, state, verifier string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
	}
	if verifier != "" {
		req.AddCookie(&http.Cookie{Name: oauthVerifierCookie, Value: verifier})
	}
	return req
}

func TestGoogleCallback_Success(t *testing.T) {
	us := &fakeUsers{res: okResult()}
	p := &fakeProvider{identity: &oauth.Identity{Email: "g@x.com", Name: "Gina"}}
	s := newTestServer(us, p)

	rec := do(t, s.Router(), callbackRequest("state=s1&code=c1", "s1", "v1"))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:3001", loc.Host)
	assert.Equal(t, "/auth", loc.Path)
	assert.Equal(t, "at-1", loc.Query().Get("accessToken"))

	assert.Equal(t, "c1", p.gotCode)
	assert.Equal(t, "v1", p.gotVerifier)
	assert.Equal(t, "g@x.com", us.gotIdentity.Email)
	assert.Equal(t, "rt-1", findCookie(rec, "refreshToken").Value)
}

func TestGoogleCallback_Errors(t *testing.T) {
	tests := []struct {
		name        string
		req         func() *http.Request
		providerErr error
		serviceErr  error
		code        int
	}{
		{"state mismatch", func() *http.Request { return callbackRequest("state=s2&code=c1", "s1", "v1") }, nil, nil, http.StatusBadRequest},
		{"no state cookie", func() *http.Request { return callbackRequest("state=s1&code=c1", "", "v1") }, nil, nil, http.StatusBadRequest},
		{"no code", func() *http.Request { return callbackRequest("state=s1", "s1", "v1") }, nil, nil, http.StatusBadRequest},
		{"exchange fails", func() *http.Request { return callbackRequest("state=s1&code=c1", "s1", "v1") }, oauth.ErrExchange, nil, http.StatusBadGateway},
		{"unverified email", func() *http.Request { return callbackRequest("state=s1&code=c1", "s1", "v1") }, oauth.ErrUnverifiedEmail, nil, http.StatusBadRequest},
		{"store failure", func() *http.Request { return callbackRequest("state=s1&code=c1", "s1", "v1") }, nil, errString("down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{identity: &oauth.Identity{Email: "g@x.com"}, err: tt.providerErr}
			s := newTestServer(&fakeUsers{res: okResult(), err: tt.serviceErr}, p)

			rec := do(t, s.Router(), tt.req())
			assert.Equal(t, tt.code, rec.Code)
			assert.Nil(t, findCookie(rec, "refreshToken"))
		})
	}
}

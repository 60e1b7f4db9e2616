package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *time.Time) {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	uc, _ := newTestUsecase(t, &now)
	ctrl := NewController(uc, Opts{
		Logger:     zap.NewNop(),
		CookieName: testCookieName,
		RefreshTTL: 24 * time.Hour,
	})

	r := chi.NewRouter()
	r.Route("/v1/auth", ctrl.Routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &now
}

func postJSON(t *testing.T, url string, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSignUpEndpoint_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"a","email":"a@x.com","password":"secret1"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"username":"alice","email":"a@x.com","password":"12345"}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/auth/sign-up", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSignUpEndpoint_CreatesAccountWithoutLeakingPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/auth/sign-up", `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "alice", body["username"])
	require.NotEmpty(t, body["id"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "password_hash")

	// same email, different username
	resp = postJSON(t, srv.URL+"/v1/auth/sign-up", `{"username":"bob","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginEndpoint_SetsRefreshCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/auth/sign-up", `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/auth/login", `{"usernameOrEmail":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "Login successful", body.Message)

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			refresh = c
		}
	}
	require.NotNil(t, refresh, "refresh cookie must be set")
	require.True(t, refresh.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	require.Equal(t, int((24 * time.Hour).Seconds()), refresh.MaxAge)
	// the refresh token is never part of the response body
	require.NotContains(t, body.AccessToken, refresh.Value)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/auth/sign-up", `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	wrongPass := postJSON(t, srv.URL+"/v1/auth/login", `{"usernameOrEmail":"alice","password":"wrong"}`)
	noUser := postJSON(t, srv.URL+"/v1/auth/login", `{"usernameOrEmail":"nobody","password":"secret1"}`)

	require.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	require.Equal(t, http.StatusUnauthorized, noUser.StatusCode)

	b1 := readBody(t, wrongPass)
	b2 := readBody(t, noUser)
	require.Equal(t, b1, b2, "auth failures must be indistinguishable")
}

func TestRefreshEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv.URL+"/v1/auth/sign-up", `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	login := postJSON(t, srv.URL+"/v1/auth/login", `{"usernameOrEmail":"alice","password":"secret1"}`)

	var refresh *http.Cookie
	for _, c := range login.Cookies() {
		if c.Name == testCookieName {
			refresh = c
		}
	}
	require.NotNil(t, refresh)

	resp := postJSON(t, srv.URL+"/v1/auth/refresh", ``, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body accessTokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)

	// without the cookie
	resp = postJSON(t, srv.URL+"/v1/auth/refresh", ``)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

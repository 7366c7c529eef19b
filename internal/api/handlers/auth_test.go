package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/notes-api/internal/api/handlers"
	"github.com/dom/notes-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewInMemoryTestServer(t)

	t.Run("success", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/register"), map[string]string{
			"username":   "alice",
			"email":      "alice@example.com",
			"password":   "wonderland",
			"other_info": "likes tea",
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body handlers.RegisterResponse
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "alice", body.Username)
		assert.Equal(t, "alice@example.com", body.Email)
		assert.Equal(t, "likes tea", body.OtherInfo)
		assert.Equal(t, "bearer", body.TokenType)
		assert.NotEmpty(t, body.AccessToken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/register"), map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "x",
		})
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "USERNAME_TAKEN")
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/register"), map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "x",
		})
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "EMAIL_TAKEN")
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]string
		}{
			{"missing username", map[string]string{"email": "a@example.com", "password": "x"}},
			{"missing email", map[string]string{"username": "zed", "password": "x"}},
			{"invalid email", map[string]string{"username": "zed", "email": "not-an-email", "password": "x"}},
			{"missing password", map[string]string{"username": "zed", "email": "zed@example.com"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp := postJSON(t, ts.APIURL("/register"), tt.body)
				testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.APIURL("/register"), "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "INVALID_REQUEST")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewInMemoryTestServer(t)
	user, password := testutil.NewUserBuilder().WithUsername("bob").Build(t, ts.Repos)

	t.Run("success", func(t *testing.T) {
		resp := testutil.PostLogin(t, ts, "bob", password)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body handlers.LoginResponse
		testutil.AssertJSONResponse(t, resp, &body)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "bearer", body.TokenType)
		assert.Equal(t, user.Email, body.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := testutil.PostLogin(t, ts, "bob", "nope")
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := testutil.PostLogin(t, ts, "nobody", password)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := testutil.PostLogin(t, ts, "bob", "")
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewInMemoryTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := testutil.DoAuthenticated(t, http.MethodGet, ts.APIURL("/notes"), nil, token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = testutil.DoAuthenticated(t, http.MethodPost, ts.APIURL("/logout"), nil, token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var msg handlers.MessageResponse
	testutil.AssertJSONResponse(t, resp, &msg)
	assert.Equal(t, "Successfully logged out", msg.Message)

	// the revoked token no longer resolves
	resp = testutil.DoAuthenticated(t, http.MethodGet, ts.APIURL("/notes"), nil, token)
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "TOKEN_REVOKED")

	// a second logout with the same token is rejected
	resp = testutil.DoAuthenticated(t, http.MethodPost, ts.APIURL("/logout"), nil, token)
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "ALREADY_REVOKED")
}

func TestAuthHandler_LogoutRequiresValidToken(t *testing.T) {
	ts := testutil.NewInMemoryTestServer(t)

	resp := testutil.DoAuthenticated(t, http.MethodPost, ts.APIURL("/logout"), nil, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")

	resp = testutil.DoAuthenticated(t, http.MethodPost, ts.APIURL("/logout"), nil, "garbage")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "TOKEN_INVALID")
}

func TestAuthHandler_LoginMetrics(t *testing.T) {
	ts := testutil.NewInMemoryTestServer(t)
	_, password := testutil.NewUserBuilder().WithUsername("carol").Build(t, ts.Repos)

	testutil.PostLogin(t, ts, "carol", password).Body.Close()
	testutil.PostLogin(t, ts, "carol", "wrong").Body.Close()

	resp, err := http.Get(ts.APIURL("/metrics"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `notes_login_total{result="ok"} 1`)
	assert.Contains(t, string(body), `notes_login_total{result="invalid_credentials"} 1`)
}

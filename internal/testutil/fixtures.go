package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/dom/notes-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username  string
	email     string
	password  string
	otherInfo string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithOtherInfo sets the free-text profile field
func (b *UserBuilder) WithOtherInfo(info string) *UserBuilder {
	b.otherInfo = info
	return b
}

// Build stores the user directly and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repos *repository.Repositories) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		OtherInfo:    b.otherInfo,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// RegisterResponse matches the /register response
type RegisterResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	OtherInfo   string `json:"other_info"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// BuildAndAuthenticate registers the user via the API and returns the stored user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"username":   b.username,
		"email":      b.email,
		"password":   b.password,
		"other_info": b.otherInfo,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var regResp RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&regResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	user, err := ts.Repos.User.GetByUsername(context.Background(), b.username)
	if err != nil {
		t.Fatalf("registered user not found: %v", err)
	}

	return user, regResp.AccessToken
}

// PostLogin submits the login form and returns the raw response
func PostLogin(t *testing.T, ts *TestServer, username, password string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := http.Post(ts.APIURL("/login"), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to post login: %v", err)
	}
	return resp
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// DoAuthenticated sends an authenticated JSON request and returns the response
func DoAuthenticated(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

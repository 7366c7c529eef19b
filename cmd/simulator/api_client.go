package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type RegisterResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	OtherInfo   string `json:"other_info"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
}

type Note struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	Body   ErrorBody
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s (%s)", e.Status, e.Body.Message, e.Body.Code)
}

// RegisterUser creates a new account with a unique name derived from baseName
func (c *APIClient) RegisterUser(baseName, password string) (*RegisterResponse, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"username":   username,
		"email":      username + "@sim.local",
		"password":   password,
		"other_info": "created by simulator",
	}

	var result RegisterResponse
	if err := c.do(http.MethodPost, "/register", body, "", &result); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &result, nil
}

// Login submits the form-encoded credentials
func (c *APIClient) Login(username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.httpClient.Post(c.baseURL+"/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResponse
	if err := decode(resp, &result); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Logout(token string) error {
	if err := c.do(http.MethodPost, "/logout", nil, token, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

func (c *APIClient) CreateNote(token, title, content string) (*Note, error) {
	var note Note
	body := map[string]string{"title": title, "content": content}
	if err := c.do(http.MethodPost, "/notes", body, token, &note); err != nil {
		return nil, fmt.Errorf("create note failed: %w", err)
	}
	return &note, nil
}

func (c *APIClient) ListNotes(token string) ([]Note, error) {
	var notes []Note
	if err := c.do(http.MethodGet, "/notes", nil, token, &notes); err != nil {
		return nil, fmt.Errorf("list notes failed: %w", err)
	}
	return notes, nil
}

func (c *APIClient) UpdateNote(token, id string, content string) (*Note, error) {
	var note Note
	body := map[string]string{"content": content}
	if err := c.do(http.MethodPut, "/notes/"+id, body, token, &note); err != nil {
		return nil, fmt.Errorf("update note failed: %w", err)
	}
	return &note, nil
}

func (c *APIClient) GetNote(token, id string) (*Note, error) {
	var note Note
	if err := c.do(http.MethodGet, "/notes/"+id, nil, token, &note); err != nil {
		return nil, fmt.Errorf("get note failed: %w", err)
	}
	return &note, nil
}

// DialEvents opens the note event websocket for token
func (c *APIClient) DialEvents(token string) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func (c *APIClient) do(method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Status: resp.StatusCode}
		json.NewDecoder(resp.Body).Decode(&statusErr.Body)
		return statusErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

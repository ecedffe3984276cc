package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Todo is a todo as seen by the client. Server todos carry an ObjectID hex
// id; local todos carry a millisecond timestamp id.
type Todo struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// API calls the todo backend over HTTP.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewAPI(baseURL string) *API {
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// SetToken sets the session id sent as a bearer token.
func (c *API) SetToken(token string) {
	c.token = token
}

func (c *API) Token() string {
	return c.token
}

// Register calls POST /api/auth/register.
func (c *API) Register(ctx context.Context, username, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
}

// Login calls POST /api/auth/login and returns the session token.
func (c *API) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Logout calls POST /api/auth/logout.
func (c *API) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the email of the signed-in user.
func (c *API) Me(ctx context.Context) (string, error) {
	var user struct {
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return "", err
	}
	return user.Email, nil
}

// List calls GET /api/todos.
func (c *API) List(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create calls POST /api/todos.
func (c *API) Create(ctx context.Context, text string, createdAt time.Time) error {
	return c.do(ctx, http.MethodPost, "/api/todos", map[string]interface{}{
		"text": text, "createdAt": createdAt,
	}, nil)
}

// Update calls PUT /api/todos. Nil fields are left out of the request.
func (c *API) Update(ctx context.Context, id string, text *string, completed *bool) error {
	body := map[string]interface{}{"id": id}
	if text != nil {
		body["text"] = *text
	}
	if completed != nil {
		body["completed"] = *completed
	}
	return c.do(ctx, http.MethodPut, "/api/todos", body, nil)
}

// Delete calls DELETE /api/todos.
func (c *API) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos", map[string]string{"id": id}, nil)
}

// Clear calls DELETE /api/todos/clear with block "all" or YYYY-MM-DD.
func (c *API) Clear(ctx context.Context, block string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/clear", map[string]string{"block": block}, nil)
}

func (c *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// checkResp returns an *APIError carrying the server's error message if the
// status is not 2xx.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var e struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

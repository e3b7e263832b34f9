package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"umspanel/internal/profile"
)

// LoginPath is the authentication endpoint relative to the base URL.
const LoginPath = "/api/login"

// Credentials is the login payload sent to the backend.
type Credentials struct {
	UserType string `json:"user_type"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// RejectedError means the backend answered but did not accept the login.
// Message is the backend's message, empty when it sent none.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login rejected (status %d)", e.Status)
	}
	return fmt.Sprintf("login rejected (status %d): %s", e.Status, e.Message)
}

// TransportError means the backend could not be reached or answered with
// something that is not a login response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "auth service unreachable: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// Client calls the authentication backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client. A zero timeout waits for the backend indefinitely.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type loginResponse struct {
	Success json.RawMessage `json:"success"`
	Message json.RawMessage `json:"message"`
	User    json.RawMessage `json:"user"`
}

// Login posts the credentials and returns the user profile on success.
// Failures are *RejectedError or *TransportError.
func (c *Client) Login(ctx context.Context, creds Credentials) (*profile.UserProfile, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("auth request failed: %w", err)}
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	// A JSON body that is not an object has no success flag and is a rejection.
	var out loginResponse
	_ = json.Unmarshal(raw, &out)
	rejected := &RejectedError{Status: resp.StatusCode, Message: messageText(out.Message)}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !isTrue(out.Success) {
		return nil, rejected
	}
	user, err := decodeUser(out.User)
	if err != nil {
		return nil, rejected
	}
	return user, nil
}

// isTrue reports whether raw is the JSON literal true.
func isTrue(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

func decodeUser(raw json.RawMessage) (*profile.UserProfile, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("missing user")
	}
	var user profile.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

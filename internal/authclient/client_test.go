package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backend(t *testing.T, status int, body string) (*httptest.Server, *Credentials) {
	t.Helper()
	var got Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, LoginPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

var creds = Credentials{UserType: "student", UserID: "2021-1-60-001", Password: "secret"}

func TestLoginSuccess(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"success":true,"user":{"name":"A","total_classes":20,"present":15,"absent":5}}`)

	user, err := New(srv.URL, time.Second).Login(context.Background(), creds)
	require.NoError(t, err)
	require.NotNil(t, user.Name)
	assert.Equal(t, "A", *user.Name)
	assert.Equal(t, 15, *user.Present)
	assert.Equal(t, creds, *got)
}

func TestLoginRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"explicit failure", http.StatusOK, `{"success":false,"message":"Wrong password"}`, "Wrong password"},
		{"no success flag", http.StatusOK, `{"user":{"name":"A"}}`, ""},
		{"unauthorized status", http.StatusUnauthorized, `{"success":false,"message":"User not found"}`, "User not found"},
		{"success with bad status", http.StatusInternalServerError, `{"success":true,"user":{}}`, ""},
		{"success without user", http.StatusOK, `{"success":true}`, ""},
		{"non-string message", http.StatusOK, `{"success":false,"message":{"code":3}}`, ""},
		{"string success flag", http.StatusOK, `{"success":"false","message":"Account locked"}`, "Account locked"},
		{"string true is not success", http.StatusOK, `{"success":"true","user":{"name":"A"}}`, ""},
		{"numeric success flag", http.StatusOK, `{"success":1,"user":{"name":"A"}}`, ""},
		{"user not an object", http.StatusOK, `{"success":true,"user":"x","message":"bad record"}`, "bad record"},
		{"null user", http.StatusOK, `{"success":true,"user":null}`, ""},
		{"array body", http.StatusOK, `["success"]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := backend(t, tt.status, tt.body)

			_, err := New(srv.URL, time.Second).Login(context.Background(), creds)

			var rejected *RejectedError
			require.True(t, errors.As(err, &rejected), "got %v", err)
			assert.Equal(t, tt.message, rejected.Message)
			assert.Equal(t, tt.status, rejected.Status)
		})
	}
}

func TestLoginMalformedBody(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `<html>gateway</html>`)

	_, err := New(srv.URL, time.Second).Login(context.Background(), creds)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Login(context.Background(), creds)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestLoginTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).Login(context.Background(), creds)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

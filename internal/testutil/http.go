package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/attendease/attendease/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewJSONRequest builds an httptest request with a JSON-encoded body and
// the headers API handlers expect.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// AsUser attaches a signed-in user to the request context, the way the
// session middleware would for a real request.
func AsUser(r *http.Request, userID primitive.ObjectID, name, email string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  name,
		Email: email,
		Role:  auth.RoleUser,
	})
}

// AsAdmin attaches a platform-admin user to the request context.
func AsAdmin(r *http.Request, userID primitive.ObjectID, name, email string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    userID.Hex(),
		Name:  name,
		Email: email,
		Role:  auth.RoleAdmin,
	})
}

// DecodeJSON unmarshals a recorded response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, rec.Body.String())
	}
}

// AssertStatus fails the test when the recorded status differs.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("expected status %d, got %d (body: %s)", want, rec.Code, rec.Body.String())
	}
}

// AssertContains fails the test when the body lacks the substring.
func AssertContains(t *testing.T, rec *httptest.ResponseRecorder, substr string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), substr) {
		t.Errorf("expected body to contain %q, got: %s", substr, rec.Body.String())
	}
}

// AssertErrorCode fails the test unless the body is a JSON error envelope
// carrying the given machine-readable code.
func AssertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body: %s)", err, rec.Body.String())
	}
	if envelope.Error.Code != code {
		t.Errorf("expected error code %q, got %q (body: %s)", code, envelope.Error.Code, rec.Body.String())
	}
}

package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestIsAdmin_True_ForAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "admin",
	})

	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return true for admin user")
	}
}

func TestIsAdmin_False_ForUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "user",
	})

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false for regular user")
	}
}

func TestIsAdmin_False_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin to return false when no user")
	}
}

func TestIsAdmin_CaseInsensitive(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "Admin",
	})

	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin to normalize role case")
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, userID, ok := authz.UserCtx(req)

	if ok {
		t.Error("expected ok=false when no user")
	}
	if role != "visitor" {
		t.Errorf("expected role 'visitor', got %q", role)
	}
	if name != "" {
		t.Errorf("expected empty name, got %q", name)
	}
	if !userID.IsZero() {
		t.Errorf("expected NilObjectID, got %v", userID)
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   "not-a-valid-objectid",
		Role: "admin",
	})

	_, _, userID, ok := authz.UserCtx(req)

	if ok {
		t.Error("expected ok=false for malformed user ID")
	}
	if !userID.IsZero() {
		t.Errorf("expected NilObjectID, got %v", userID)
	}
}

func TestUserCtx_ValidUser(t *testing.T) {
	idHex := testUserID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   idHex,
		Name: "Priya Sharma",
		Role: "User",
	})

	role, name, userID, ok := authz.UserCtx(req)

	if !ok {
		t.Fatal("expected ok=true for a valid user")
	}
	if role != "user" {
		t.Errorf("expected lowercased role 'user', got %q", role)
	}
	if name != "Priya Sharma" {
		t.Errorf("expected name 'Priya Sharma', got %q", name)
	}
	if userID.Hex() != idHex {
		t.Errorf("expected user ID %s, got %s", idHex, userID.Hex())
	}
}

func TestHasAnyRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "user",
	})

	if !authz.HasAnyRole(req, "admin", "user") {
		t.Error("expected HasAnyRole to match 'user'")
	}
	if authz.HasAnyRole(req, "admin", "support") {
		t.Error("expected HasAnyRole to reject roles the user lacks")
	}

	anon := httptest.NewRequest("GET", "/test", nil)
	if authz.HasAnyRole(anon, "user") {
		t.Error("expected HasAnyRole to return false for anonymous requests")
	}
}

func TestRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   testUserID(),
		Role: "ADMIN",
	})

	role, ok := authz.Role(req)
	if !ok || role != "admin" {
		t.Errorf("expected (admin, true), got (%q, %v)", role, ok)
	}
}

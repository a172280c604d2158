package authn_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attendease/attendease/internal/app/features/authn"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*authn.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager(
		"test-session-key-0123456789ABCDEF", "attendease-test", "",
		time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return authn.NewHandler(db, sm, nil, "AttendEase", "http://localhost:3000", zap.NewNop()), db
}

func register(t *testing.T, h *authn.Handler, name, email, password string) {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", map[string]any{
		"full_name": name,
		"email":     email,
		"password":  password,
	})
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)
}

func login(t *testing.T, h *authn.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	return rec
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h, _ := newHandler(t)
	register(t, h, "Real User", "real@example.com", "correct horse battery")

	rec := login(t, h, "real@example.com", "wrong password")
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	// An unknown email answers identically.
	rec = login(t, h, "nobody@example.com", "wrong password")
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestHandleLogin_ThrottledAfterRepeatedFailures(t *testing.T) {
	h, _ := newHandler(t)
	register(t, h, "Target User", "target@example.com", "correct horse battery")

	for i := 0; i < 5; i++ {
		rec := login(t, h, "target@example.com", "wrong password")
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
	}

	rec := login(t, h, "target@example.com", "wrong password")
	testutil.AssertStatus(t, rec, http.StatusTooManyRequests)
	testutil.AssertErrorCode(t, rec, "rate_limited")

	// The throttle holds even for the right password; guessing it during
	// the cooldown must not slip through.
	rec = login(t, h, "target@example.com", "correct horse battery")
	testutil.AssertStatus(t, rec, http.StatusTooManyRequests)
}

func TestHandleLogin_SuccessResetsAccountThrottle(t *testing.T) {
	h, _ := newHandler(t)
	register(t, h, "Forgetful User", "forgetful@example.com", "correct horse battery")

	for i := 0; i < 3; i++ {
		testutil.AssertStatus(t,
			login(t, h, "forgetful@example.com", "wrong password"),
			http.StatusUnauthorized)
	}

	rec := login(t, h, "forgetful@example.com", "correct horse battery")
	testutil.AssertStatus(t, rec, http.StatusOK)

	// The successful sign-in cleared the account window; a later slip does
	// not inherit the earlier failures.
	for i := 0; i < 4; i++ {
		testutil.AssertStatus(t,
			login(t, h, "forgetful@example.com", "wrong password"),
			http.StatusUnauthorized)
	}
}

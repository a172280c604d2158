// Package auth provides cookie-session authentication for AttendEase.
//
// A SessionManager owns the cookie store and exposes middleware for
// loading the signed-in user and gating routes. Org-level roles
// (member/admin/owner) live on memberships and are checked by the
// session and check-in layers; the Role here is the platform role.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type ctxKey int

const currentUserKey ctxKey = iota

// Session value keys.
const (
	keyUserID = "user_id"
	keyName   = "name"
	keyEmail  = "email"
	keyRole   = "role"
)

// Platform roles. Org roles are a separate namespace (see models.OrgMembership).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SessionUser is the signed-in user as carried in the request context.
type SessionUser struct {
	ID    string // Mongo ObjectID hex of the user record
	Name  string
	Email string
	Role  string // platform role: "user" or "admin"
}

// UserFetcher loads a fresh user snapshot by ID. When set on the manager,
// LoadSessionUser consults it so role changes take effect without a
// re-login. Returning (nil, nil) means the user no longer exists and the
// session is dropped.
type UserFetcher func(ctx context.Context, userID string) (*SessionUser, error)

// SessionManager owns the cookie store and session lifecycle.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
	fetch UserFetcher
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None so they
// work in cross-site contexts over HTTPS. In local dev over
// http://localhost use secure=false so the browser accepts them.
func NewSessionManager(sessionKey, sessionName, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if sessionName == "" {
		return nil, fmt.Errorf("session name is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return &SessionManager{store: store, name: sessionName, log: logger}, nil
}

// SetUserFetcher installs a loader that refreshes the session user from
// the database on each request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetch = f }

// SignIn writes the user into a new session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// A decode failure just means a stale or tampered cookie; the
		// store hands back a fresh session alongside the error.
		if scErr, ok := err.(securecookie.Error); !ok || !scErr.IsDecode() {
			return err
		}
	}
	sess.Values[keyUserID] = u.ID
	sess.Values[keyName] = u.Name
	sess.Values[keyEmail] = u.Email
	sess.Values[keyRole] = u.Role
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); !ok || !scErr.IsDecode() {
			return err
		}
	}
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(r, w)
}

// CurrentUser returns the signed-in user placed in the context by
// LoadSessionUser, or (nil, false) for anonymous requests.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// WithTestUser injects a SessionUser into the request context. Tests use
// this to simulate what LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// LoadSessionUser resolves the session cookie into a SessionUser and
// stores it in the request context. Requests without a valid session
// pass through anonymous; gating is RequireSignedIn's job.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				// Stale cookie (rotated key, old format). Drop it and
				// continue anonymous rather than failing the request.
				sess.Options.MaxAge = -1
				_ = sess.Save(r, w)
				next.ServeHTTP(w, r)
				return
			}
			sm.log.Warn("session load failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		id := getString(sess, keyUserID)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:    id,
			Name:  getString(sess, keyName),
			Email: getString(sess, keyEmail),
			Role:  getString(sess, keyRole),
		}

		// Refresh from the database when a fetcher is installed, so a
		// role change or deletion is seen on the next request.
		if sm.fetch != nil {
			fresh, err := sm.fetch(r.Context(), id)
			if err != nil {
				sm.log.Warn("session user refresh failed; using cookie values",
					zap.String("user_id", id), zap.Error(err))
			} else if fresh == nil {
				sess.Options.MaxAge = -1
				_ = sess.Save(r, w)
				next.ServeHTTP(w, r)
				return
			} else {
				u = fresh
			}
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn rejects anonymous requests. HTML requests are redirected
// to /login with a return URL, HTMX requests get an HX-Redirect, and API
// requests get a plain 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			sm.denyUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only signed-in users whose platform role matches one
// of the given roles (case-insensitive).
func (sm *SessionManager) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToLower(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				sm.denyUnauthenticated(w, r)
				return
			}

			if _, ok := allowed[strings.ToLower(u.Role)]; !ok {
				if r.Header.Get("HX-Request") == "true" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (sm *SessionManager) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	target := "/login?return=" + currentURI(r)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

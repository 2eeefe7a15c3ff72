package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	CookieName     = "pollboard_session"
	UserCookieName = "pollboard_user"
	SessionExpiry  = 24 * time.Hour
	userCookieAge  = 365 * 24 * time.Hour
)

// HeaderUserName carries the viewer's percent-encoded display name on API requests
const HeaderUserName = "X-User-Name"

// Words for generated admin passwords
var pollWords = []string{
	"ballot", "choice", "tally", "quorum", "motion",
	"second", "agenda", "count", "ayes", "nays",
	"table", "gavel", "option", "winner", "picnic",
	"lunch", "movie", "trip", "vote",
}

// Identity is who a request claims to be. Name is self-declared and never
// verified; Admin is true only with a live admin session.
type Identity struct {
	Name  string
	Admin bool
}

type session struct {
	name    string
	expires time.Time
}

// Auth handles admin authentication and viewer identification. Voters are
// never authenticated; the admin session only decides who may create,
// close, reopen and delete polls.
type Auth struct {
	password string
	mu       sync.RWMutex
	sessions map[string]session
	now      func() time.Time
}

// New creates a new Auth instance with the given password
func New(password string) *Auth {
	return &Auth{
		password: password,
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = pollWords[randomInt(len(pollWords))]
	}
	return strings.Join(words, "-")
}

// Password returns the configured admin password
func (a *Auth) Password() string {
	return a.password
}

// Login starts an admin session if password matches. A non-empty name is
// kept as the admin's display name for the session.
func (a *Auth) Login(password, name string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", false
	}

	token := generateToken()
	now := a.now()

	a.mu.Lock()
	for t, s := range a.sessions {
		if now.After(s.expires) {
			delete(a.sessions, t)
		}
	}
	a.sessions[token] = session{name: strings.TrimSpace(name), expires: now.Add(SessionExpiry)}
	a.mu.Unlock()

	return token, true
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

func (a *Auth) lookup(token string) (session, bool) {
	a.mu.RLock()
	s, ok := a.sessions[token]
	a.mu.RUnlock()
	if !ok {
		return session{}, false
	}

	if a.now().After(s.expires) {
		a.Logout(token)
		return session{}, false
	}
	return s, true
}

// ValidateSession checks if a session token is valid
func (a *Auth) ValidateSession(token string) bool {
	_, ok := a.lookup(token)
	return ok
}

func (a *Auth) requestSession(r *http.Request) (session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return session{}, false
	}
	return a.lookup(cookie.Value)
}

// IsAdmin reports whether the request carries a valid admin session
func (a *Auth) IsAdmin(r *http.Request) bool {
	_, ok := a.requestSession(r)
	return ok
}

// Identify resolves the request's viewer. The name comes from the
// X-User-Name header, then ?as=, then the remembered-name cookie, then the
// name given at admin login. Name is empty when none is present.
func (a *Auth) Identify(r *http.Request) Identity {
	var id Identity
	s, ok := a.requestSession(r)
	if ok {
		id.Admin = true
	}

	for _, name := range []string{
		decodeName(r.Header.Get(HeaderUserName)),
		r.URL.Query().Get("as"),
		UserFromRequest(r),
		s.name,
	} {
		if name = strings.TrimSpace(name); name != "" {
			id.Name = name
			break
		}
	}
	return id
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.IsAdmin(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// SetUserCookie remembers the viewer's display name. The name is
// percent-encoded; cookie values cannot carry arbitrary UTF-8.
func SetUserCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookieName,
		Value:    url.QueryEscape(name),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(userCookieAge.Seconds()),
	})
}

// UserFromRequest returns the remembered display name, or ""
func UserFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(UserCookieName)
	if err != nil {
		return ""
	}
	name, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}

// decodeName undoes the browser's encodeURIComponent. Values that are not
// valid percent-encoding are used as sent.
func decodeName(v string) string {
	if name, err := url.PathUnescape(v); err == nil {
		return name
	}
	return v
}

// generateToken creates a random session token
func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// randomInt returns a uniformly random int in [0, n)
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

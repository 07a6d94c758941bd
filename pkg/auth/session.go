package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// Store is the global session store for the browser login flow. API clients
// use bearer tokens directly; the cookie only carries the same token for
// browsers.
var Store *sessions.CookieStore

// SessionName is the name of the session cookie.
const SessionName = "logia-session"

// sessionKeyToken is the session value holding the signed JWT.
const sessionKeyToken = "token"

// InitSessionStore initializes the cookie-based session store.
//
// The secret can be any passphrase; it is SHA-256 hashed to derive a
// 32-byte signing key. It must be consistent across server restarts and
// multiple servers in a load-balanced deployment.
//
// Security settings:
// - HttpOnly: true (inaccessible to JavaScript)
// - Secure: true (HTTPS only in production)
// - SameSite: Strict (prevents CSRF)
func InitSessionStore(secret string, maxAge int) {
	key := sha256.Sum256([]byte(secret))

	Store = sessions.NewCookieStore(key[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// SaveTokenToSession stores the signed token in the browser session.
func SaveTokenToSession(r *http.Request, w http.ResponseWriter, token string) error {
	if Store == nil {
		return nil
	}
	session, err := Store.Get(r, SessionName)
	if err != nil {
		// A stale or tampered cookie yields a fresh session.
		session, _ = Store.New(r, SessionName)
	}
	session.Values[sessionKeyToken] = token
	return session.Save(r, w)
}

// TokenFromSession reads the signed token from the browser session.
func TokenFromSession(r *http.Request) (string, error) {
	if Store == nil {
		return "", nil
	}
	session, err := Store.Get(r, SessionName)
	if err != nil {
		return "", err
	}
	token, _ := session.Values[sessionKeyToken].(string)
	return token, nil
}

// ClearSession expires the browser session cookie.
func ClearSession(r *http.Request, w http.ResponseWriter) error {
	if Store == nil {
		return nil
	}
	session, err := Store.Get(r, SessionName)
	if err != nil {
		session, _ = Store.New(r, SessionName)
	}
	session.Options.MaxAge = -1
	delete(session.Values, sessionKeyToken)
	return session.Save(r, w)
}

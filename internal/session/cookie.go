package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	cookieName   = "qls_browser"
	browserIDKey = "bid"
)

// Cookies issues and reads the signed, encrypted browser id cookie.
type Cookies struct {
	store *sessions.CookieStore
}

// NewCookies takes a 32 or 64 byte auth key and a 16, 24 or 32 byte
// encryption key.
func NewCookies(authKey, encryptionKey []byte, secure bool) *Cookies {
	store := sessions.NewCookieStore(authKey, encryptionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(DefaultTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store}
}

// BrowserID returns the id for this browser, issuing a new cookie when the
// request has none or carries one that fails to decode.
func (c *Cookies) BrowserID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A tampered cookie still yields a fresh session alongside the error
	sess, err := c.store.Get(r, cookieName)
	if err != nil && !isDecodeError(err) {
		return "", fmt.Errorf("read browser cookie: %w", err)
	}

	if id, ok := sess.Values[browserIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[browserIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save browser cookie: %w", err)
	}
	return id, nil
}

// Peek returns the browser id without issuing a cookie.
func (c *Cookies) Peek(r *http.Request) string {
	sess, err := c.store.Get(r, cookieName)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[browserIDKey].(string)
	return id
}

func isDecodeError(err error) bool {
	var scErr securecookie.Error
	return errors.As(err, &scErr) && scErr.IsDecode()
}

package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookie = "videolib_session"
	flashCookie   = "videolib_flash"

	// rememberMaxAge keeps a "remember me" session alive across browser
	// restarts.
	rememberMaxAge = 30 * 24 * time.Hour
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Message  string
	Category string
}

// Sessions signs and reads the identity and flash cookies.
type Sessions struct {
	sc *securecookie.SecureCookie
}

// NewSessions derives the cookie signing key from the configured secret.
func NewSessions(secret string) *Sessions {
	hashKey := sha256.Sum256([]byte(secret))
	return &Sessions{sc: securecookie.New(hashKey[:], nil)}
}

// SetUser transitions the session to authenticated. With remember set the
// cookie persists for 30 days, otherwise it lives for the browser session.
func (s *Sessions) SetUser(w http.ResponseWriter, userID int, remember bool) error {
	encoded, err := s.sc.Encode(sessionCookie, userID)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(rememberMaxAge.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// UserID returns the authenticated user id carried by the request, if any.
func (s *Sessions) UserID(r *http.Request) (int, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, false
	}

	var userID int
	if err := s.sc.Decode(sessionCookie, cookie.Value, &userID); err != nil {
		return 0, false
	}
	return userID, true
}

// Clear transitions the session back to anonymous.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SetFlash attaches a one-shot notice to the next rendered page.
func (s *Sessions) SetFlash(w http.ResponseWriter, message, category string) {
	encoded, err := s.sc.Encode(flashCookie, Flash{Message: message, Category: category})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode flash cookie")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending notice, if one is set.
func (s *Sessions) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	var flash Flash
	if err := s.sc.Decode(flashCookie, cookie.Value, &flash); err != nil {
		return nil
	}
	return &flash
}

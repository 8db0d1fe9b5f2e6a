package auth

import (
	"context"
	"net/http"
	"net/url"

	"videolib/models"
)

type contextKey string

const userContextKey contextKey = "current_user"

// UserLoader resolves a session's user id to an active account.
type UserLoader interface {
	GetActiveByID(id int) (*models.User, error)
}

// LoginMessage is flashed when an anonymous request hits a protected route.
const LoginMessage = "Please log in to access this page."

// RequireLogin gates a handler behind an authenticated session. Anonymous
// requests are redirected to the login page, preserving the originally
// requested URL for the post-login redirect.
func RequireLogin(sessions *Sessions, users UserLoader, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessions.UserID(r)
		if !ok {
			redirectToLogin(sessions, w, r)
			return
		}

		user, err := users.GetActiveByID(userID)
		if err != nil {
			// Stale cookie for a deleted or deactivated account.
			sessions.Clear(w)
			redirectToLogin(sessions, w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user attached by RequireLogin, or nil
// on unguarded routes and anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

func redirectToLogin(sessions *Sessions, w http.ResponseWriter, r *http.Request) {
	sessions.SetFlash(w, LoginMessage, "error")
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}

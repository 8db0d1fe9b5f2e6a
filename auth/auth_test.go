package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"videolib/models"

	"github.com/stretchr/testify/assert"
)

func cookiesToRequest(t *testing.T, rec *httptest.ResponseRecorder, req *http.Request) {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge >= 0 {
			req.AddCookie(cookie)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword("not-a-hash", "secret123"))
}

func TestSessions_SetAndReadUser(t *testing.T) {
	sessions := NewSessions("test-secret")

	rec := httptest.NewRecorder()
	assert.NoError(t, sessions.SetUser(rec, 7, false))

	req := httptest.NewRequest("GET", "/", nil)
	cookiesToRequest(t, rec, req)

	userID, ok := sessions.UserID(req)
	assert.True(t, ok)
	assert.Equal(t, 7, userID)
}

func TestSessions_RememberSetsMaxAge(t *testing.T) {
	sessions := NewSessions("test-secret")

	rec := httptest.NewRecorder()
	assert.NoError(t, sessions.SetUser(rec, 7, true))
	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, 30*24*60*60, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	assert.NoError(t, sessions.SetUser(rec, 7, false))
	assert.Equal(t, 0, rec.Result().Cookies()[0].MaxAge, "session-lifetime cookie carries no max age")
}

func TestSessions_TamperedCookieRejected(t *testing.T) {
	sessions := NewSessions("test-secret")
	other := NewSessions("other-secret")

	rec := httptest.NewRecorder()
	assert.NoError(t, other.SetUser(rec, 7, false))

	req := httptest.NewRequest("GET", "/", nil)
	cookiesToRequest(t, rec, req)

	_, ok := sessions.UserID(req)
	assert.False(t, ok, "cookie signed with a different secret must not validate")
}

func TestSessions_Clear(t *testing.T) {
	sessions := NewSessions("test-secret")

	rec := httptest.NewRecorder()
	sessions.Clear(rec)
	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessions_FlashRoundTrip(t *testing.T) {
	sessions := NewSessions("test-secret")

	rec := httptest.NewRecorder()
	sessions.SetFlash(rec, "Login successful!", "success")

	req := httptest.NewRequest("GET", "/", nil)
	cookiesToRequest(t, rec, req)

	popRec := httptest.NewRecorder()
	flash := sessions.PopFlash(popRec, req)
	if assert.NotNil(t, flash) {
		assert.Equal(t, "Login successful!", flash.Message)
		assert.Equal(t, "success", flash.Category)
	}

	// Popping clears the cookie.
	cleared := popRec.Result().Cookies()
	assert.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	// A request without the cookie has no flash.
	assert.Nil(t, sessions.PopFlash(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil)))
}

type stubUsers struct {
	users map[int]*models.User
}

func (s *stubUsers) GetActiveByID(id int) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user not found")
}

func TestRequireLogin_AnonymousRedirects(t *testing.T) {
	sessions := NewSessions("test-secret")
	guard := RequireLogin(sessions, &stubUsers{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for anonymous request")
	}))

	req := httptest.NewRequest("GET", "/manage?tab=2", nil)
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/manage?tab=2"), rec.Header().Get("Location"))
}

func TestRequireLogin_AuthenticatedPassesUser(t *testing.T) {
	sessions := NewSessions("test-secret")
	users := &stubUsers{users: map[int]*models.User{7: {ID: 7, Username: "koosha", IsActive: true}}}

	var seen *models.User
	guard := RequireLogin(sessions, users, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r)
	}))

	loginRec := httptest.NewRecorder()
	assert.NoError(t, sessions.SetUser(loginRec, 7, false))

	req := httptest.NewRequest("GET", "/manage", nil)
	cookiesToRequest(t, loginRec, req)

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, seen) {
		assert.Equal(t, "koosha", seen.Username)
	}
}

func TestRequireLogin_StaleSessionCleared(t *testing.T) {
	sessions := NewSessions("test-secret")

	loginRec := httptest.NewRecorder()
	assert.NoError(t, sessions.SetUser(loginRec, 99, false))

	req := httptest.NewRequest("GET", "/manage", nil)
	cookiesToRequest(t, loginRec, req)

	rec := httptest.NewRecorder()
	guard := RequireLogin(sessions, &stubUsers{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a deactivated account")
	}))
	guard.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

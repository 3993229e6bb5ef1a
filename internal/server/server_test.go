package server

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracker/internal/db"
	"tracker/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	sessions := session.NewManager("test-secret", time.Hour)
	srv, err := New(database, "../../web/templates", sessions, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user through the real form flow and returns the
// session cookie.
func registerAndLogin(t *testing.T, srv *Server, email string) *http.Cookie {
	t.Helper()
	w := postForm(srv, "/register", url.Values{
		"email":          {email},
		"name":           {"alice"},
		"password":       {"secret"},
		"password_check": {"secret"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, "/login", url.Values{"email": {email}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestRegisterLogin(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")
	assert.Equal(t, session.CookieName, cookie.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "a@b.com")

	w := postForm(srv, "/login", url.Values{"email": {"a@b.com"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexAnonymousDegradedView(t *testing.T) {
	srv := newTestServer(t)
	w := get(srv, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Welcome back")
}

func TestProfileRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	w := get(srv, "/profile", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))
}

func TestProfileShowsProjects(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")

	w := postForm(srv, "/project/new", url.Values{"name": {"alpha"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = get(srv, "/profile", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alpha")
}

func TestAdminGuardFallsThroughForNonAdmin(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")

	w := get(srv, "/user/1", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Result().Header.Get("Location"))
}

func TestAdminGuardFallsThroughForAnonymous(t *testing.T) {
	srv := newTestServer(t)
	w := get(srv, "/user/1", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Result().Header.Get("Location"))
}

func TestAdminUserLookup(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "root@b.com")
	_, err := srv.DB.Exec(`UPDATE user SET admin = 1 WHERE email = ?`, "root@b.com")
	require.NoError(t, err)

	w := get(srv, "/user/1", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "root@b.com")
}

func TestProjectTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")

	// Create a project; the redirect carries the assigned id.
	w := postForm(srv, "/project/new", url.Values{"name": {"alpha"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Result().Header.Get("Location")
	require.Equal(t, "/project/1", loc)

	w = get(srv, loc, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Add a task and complete it.
	w = postForm(srv, loc+"/task/new", url.Values{"description": {"write the report"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, loc+"/task/1/complete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var end sql.NullString
	var delta sql.NullInt64
	require.NoError(t, srv.DB.QueryRow(`SELECT task_end_date, time_delta FROM proj_tasks WHERE id = 1`).Scan(&end, &delta))
	assert.True(t, end.Valid)
	require.True(t, delta.Valid)
	assert.GreaterOrEqual(t, delta.Int64, int64(0))

	// Completing a task that does not exist is a quiet no-op.
	w = postForm(srv, loc+"/task/99/complete", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	// Delete the task, then the project; the flash lands on the profile.
	w = postForm(srv, loc+"/task/1/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, "/project/1/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile", w.Result().Header.Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookie)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "Project deleted")
}

func TestProjectEdit(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")

	w := postForm(srv, "/project/new", url.Values{"name": {"alpha"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, "/project/1/edit", url.Values{
		"name":     {"alpha v2"},
		"end_date": {"2024-06-01T12:00:00"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var name, endDate string
	require.NoError(t, srv.DB.QueryRow(`SELECT name, proj_end_date FROM project WHERE id = 1`).Scan(&name, &endDate))
	assert.Equal(t, "alpha v2", name)
	assert.Equal(t, "2024-06-01 12:00:00", endDate)
}

func TestProjectEditRejectsBadDate(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com")

	w := postForm(srv, "/project/new", url.Values{"name": {"alpha"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, "/project/1/edit", url.Values{
		"name":     {"alpha"},
		"end_date": {"whenever"},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{
		"/project/new",
		"/project/1/edit",
		"/project/1/delete",
		"/project/1/task/new",
		"/project/1/task/1/complete",
		"/project/1/task/1/delete",
	} {
		w := postForm(srv, path, url.Values{}, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Result().Header.Get("Location"), path)
	}
}

package server

import (
	"database/sql"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tracker/internal/session"
)

const flashCookieName = "tracker_flash"

type Server struct {
	DB       *sql.DB
	Sessions *session.Manager
	Log      *zap.Logger

	tmpl map[string]*template.Template
}

func New(db *sql.DB, templateDir string, sessions *session.Manager, log *zap.Logger) (*Server, error) {
	templates := map[string]*template.Template{}
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	return &Server{DB: db, Sessions: sessions, Log: log, tmpl: templates}, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.ranked(
		when(s.handleIndex, requireUser),
		when(s.handleIndexAnon),
	))
	mux.HandleFunc("GET /login", s.ranked(
		when(s.handleIndex, requireUser),
		when(s.handleLoginForm),
	))
	mux.HandleFunc("POST /login", s.handleLoginPost)
	mux.HandleFunc("GET /register", s.ranked(
		when(s.handleRegisterForm, maybeUser),
	))
	mux.HandleFunc("POST /register", s.handleRegisterPost)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /profile", s.ranked(
		when(s.handleProfile, requireUser, loadProjects),
	))

	mux.HandleFunc("GET /project/new", s.ranked(
		when(s.handleProjectNewForm, requireUser),
	))
	mux.HandleFunc("POST /project/new", s.ranked(
		when(s.handleProjectCreate, requireUser),
	))
	mux.HandleFunc("GET /project/{id}", s.ranked(
		when(s.handleProjectView, requireUser, loadProjectTasks),
	))
	mux.HandleFunc("GET /project/{id}/edit", s.ranked(
		when(s.handleProjectEditForm, requireUser),
	))
	mux.HandleFunc("POST /project/{id}/edit", s.ranked(
		when(s.handleProjectEditPost, requireUser),
	))
	mux.HandleFunc("POST /project/{id}/delete", s.ranked(
		when(s.handleProjectDelete, requireUser),
	))

	mux.HandleFunc("GET /project/{id}/task/new", s.ranked(
		when(s.handleTaskNewForm, requireUser),
	))
	mux.HandleFunc("POST /project/{id}/task/new", s.ranked(
		when(s.handleTaskCreate, requireUser),
	))
	mux.HandleFunc("POST /project/{id}/task/{task}/complete", s.ranked(
		when(s.handleTaskComplete, requireUser),
	))
	mux.HandleFunc("POST /project/{id}/task/{task}/delete", s.ranked(
		when(s.handleTaskDelete, requireUser),
	))

	mux.HandleFunc("GET /user/{id}", s.ranked(
		when(s.handleAdminUserView, requireAdmin),
		when(s.handleRedirectHome),
	))

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// setFlash stores a one-shot message shown on the next page view.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true})
}

// popFlash reads and clears the flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1, HttpOnly: true})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

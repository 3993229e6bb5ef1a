package server

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tracker/internal/auth"
	"tracker/internal/models"
)

// The datepicker posts local datetimes with a T separator; storage uses the
// space-separated form sqlite's CURRENT_TIMESTAMP produces.
const formDateLayout = "2006-01-02T15:04:05"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	s.render(w, "index", map[string]any{"User": rc.currentUser()})
}

func (s *Server) handleIndexAnon(w http.ResponseWriter, r *http.Request, _ *requestContext) {
	s.render(w, "index", map[string]any{})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request, _ *requestContext) {
	s.render(w, "login", map[string]any{})
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	user, err := models.GetUserByEmail(s.DB, email)
	if err != nil {
		s.Log.Error("login lookup", zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, models.ErrInvalidCredentials.Error(), http.StatusBadRequest)
		return
	}
	ok, err := auth.Verify(password, user.PasswordHash)
	if err != nil {
		s.Log.Error("verify password", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, models.ErrInvalidCredentials.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Sessions.Issue(w, user.ID); err != nil {
		s.Log.Error("issue session", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logged-in users get the index instead of the registration form.
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	if user := rc.currentUser(); user != nil {
		s.render(w, "index", map[string]any{"User": user})
		return
	}
	s.render(w, "register", map[string]any{})
}

func (s *Server) handleRegisterPost(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	name := r.FormValue("name")
	password := r.FormValue("password")
	passwordCheck := r.FormValue("password_check")
	if email == "" || name == "" || password == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	if password != passwordCheck {
		http.Error(w, "passwords do not match", http.StatusBadRequest)
		return
	}
	hash, err := auth.Hash(password)
	if err != nil {
		s.Log.Error("hash password", zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if err := models.CreateUser(s.DB, email, name, hash); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	data := map[string]any{
		"User":     rc.user,
		"Projects": rc.projects,
	}
	if msg := popFlash(w, r); msg != "" {
		data["Msg"] = msg
	}
	s.render(w, "profile", data)
}

func (s *Server) handleProjectNewForm(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	s.render(w, "project_new", map[string]any{"User": rc.user})
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	id, err := models.CreateProject(s.DB, name, rc.user.ID)
	if err != nil {
		s.Log.Error("create project", zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/project/"+strconv.Itoa(id), http.StatusSeeOther)
}

func (s *Server) handleProjectView(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	project, err := models.GetProjectByID(s.DB, rc.projectID)
	if err != nil {
		s.Log.Error("get project", zap.Int("project_id", rc.projectID), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "project", map[string]any{
		"User":    rc.user,
		"Project": project,
		"Tasks":   rc.tasks,
	})
}

func (s *Server) handleProjectEditForm(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	project, err := models.GetProjectByID(s.DB, id)
	if err != nil || project == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "project_edit", map[string]any{"User": rc.user, "Project": project})
}

func (s *Server) handleProjectEditPost(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	name := r.FormValue("name")
	endDate, err := normalizeFormDate(r.FormValue("end_date"))
	if err != nil {
		http.Error(w, "invalid end date", http.StatusBadRequest)
		return
	}
	if _, err := models.UpdateProject(s.DB, id, name, endDate); err != nil {
		s.Log.Error("edit project", zap.Int("project_id", id), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/project/"+strconv.Itoa(id), http.StatusSeeOther)
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	ok, err := models.DeleteProject(s.DB, id)
	if err != nil {
		s.Log.Error("delete project", zap.Int("project_id", id), zap.Error(err))
		setFlash(w, "Hmm... that didn't work")
	} else if ok {
		setFlash(w, "Project deleted")
	} else {
		setFlash(w, "No such project")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleTaskNewForm(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	project, err := models.GetProjectByID(s.DB, id)
	if err != nil || project == nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	s.render(w, "task_new", map[string]any{"User": rc.user, "Project": project})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	description := r.FormValue("description")
	if description == "" {
		http.Error(w, "missing description", http.StatusBadRequest)
		return
	}
	if _, err := models.AddTask(s.DB, description, id); err != nil {
		s.Log.Error("add task", zap.Int("project_id", id), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/project/"+strconv.Itoa(id), http.StatusSeeOther)
}

// handleTaskComplete stamps the end date, then computes and stores the
// elapsed seconds. A nonexistent task is a quiet no-op; a timestamp that will
// not parse is a hard failure.
func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	projectID := pathID(r, "id")
	taskID := pathID(r, "task")
	ok, err := models.CompleteTask(s.DB, taskID)
	if err != nil {
		s.Log.Error("complete task", zap.Int("task_id", taskID), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if ok {
		if _, err := models.ComputeTimeDelta(s.DB, taskID); err != nil {
			s.Log.Error("compute time delta", zap.Int("task_id", taskID), zap.Error(err))
			http.Error(w, "error", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/project/"+strconv.Itoa(projectID), http.StatusSeeOther)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	projectID := pathID(r, "id")
	taskID := pathID(r, "task")
	if _, err := models.DeleteTask(s.DB, taskID, projectID); err != nil {
		s.Log.Error("delete task", zap.Int("task_id", taskID), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/project/"+strconv.Itoa(projectID), http.StatusSeeOther)
}

func (s *Server) handleAdminUserView(w http.ResponseWriter, r *http.Request, rc *requestContext) {
	id := pathID(r, "id")
	user, err := models.GetUserByID(s.DB, id)
	if err != nil {
		s.Log.Error("admin user lookup", zap.Int("user_id", id), zap.Error(err))
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "user", map[string]any{"User": rc.user, "Admin": rc.user, "Target": user})
}

func (s *Server) handleRedirectHome(w http.ResponseWriter, r *http.Request, _ *requestContext) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func pathID(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.PathValue(name))
	return n
}

func normalizeFormDate(v string) (string, error) {
	t, err := time.Parse(formDateLayout, v)
	if err != nil {
		return "", err
	}
	return t.Format(models.TimestampLayout), nil
}

package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tracker/internal/models"
)

// requestContext carries what guards resolve for a single request: the acting
// user plus any data a guard loaded on the handler's behalf. One context is
// built per request, so the user lookup runs at most once no matter how many
// guards or handlers ask for it.
type requestContext struct {
	srv *Server
	req *http.Request

	user         *models.User
	userResolved bool

	projects  []models.ProjectWithTasks
	tasks     []models.ProjectTask
	projectID int
}

// currentUser resolves the session cookie to a user record, memoized for the
// lifetime of the request. Cookie problems and unknown ids both resolve to
// anonymous; only the lookup itself can log an error.
func (c *requestContext) currentUser() *models.User {
	if c.userResolved {
		return c.user
	}
	c.userResolved = true
	id, ok := c.srv.Sessions.UserID(c.req)
	if !ok {
		return nil
	}
	u, err := models.GetUserByID(c.srv.DB, id)
	if err != nil {
		c.srv.Log.Error("resolve session user", zap.Int("user_id", id), zap.Error(err))
		return nil
	}
	c.user = u
	return c.user
}

// A guard is a precondition on the request. Returning false skips the current
// alternative and passes control to the next rank; it is not an error. Guards
// only read.
type guard func(*requestContext) bool

type guardedHandler func(http.ResponseWriter, *http.Request, *requestContext)

// alternative pairs an ordered guard list with the handler that runs once
// every guard passes.
type alternative struct {
	guards  []guard
	handler guardedHandler
}

func when(h guardedHandler, guards ...guard) alternative {
	return alternative{guards: guards, handler: h}
}

// ranked dispatches to the first alternative whose guards all pass, trying
// them in registration order. Within one alternative the guards run left to
// right and the first failure moves on to the next rank. When nothing
// matches, the request resolves to a login redirect; that terminal is a
// designed fallback, not an error.
func (s *Server) ranked(alts ...alternative) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := &requestContext{srv: s, req: r}
		for _, alt := range alts {
			passed := true
			for _, g := range alt.guards {
				if !g(rc) {
					passed = false
					break
				}
			}
			if passed {
				alt.handler(w, r, rc)
				return
			}
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// maybeUser always passes, resolving the user if a valid session is present.
func maybeUser(c *requestContext) bool {
	c.currentUser()
	return true
}

func requireUser(c *requestContext) bool {
	return c.currentUser() != nil
}

func requireAdmin(c *requestContext) bool {
	u := c.currentUser()
	return u != nil && u.Admin
}

// loadProjects requires a user and loads their project aggregate. An empty
// project list still passes; only a storage failure falls through.
func loadProjects(c *requestContext) bool {
	u := c.currentUser()
	if u == nil {
		return false
	}
	projects, err := models.LoadProjectsWithRecentTasks(c.srv.DB, u.ID)
	if err != nil {
		c.srv.Log.Error("load project aggregate", zap.Int("user_id", u.ID), zap.Error(err))
		return false
	}
	c.projects = projects
	return true
}

// loadProjectTasks requires a project id path parameter and loads that
// project's tasks. A malformed id or a storage failure falls through.
func loadProjectTasks(c *requestContext) bool {
	id, err := strconv.Atoi(c.req.PathValue("id"))
	if err != nil || id <= 0 {
		return false
	}
	tasks, err := models.ListTasksForProject(c.srv.DB, id)
	if err != nil {
		c.srv.Log.Error("load project tasks", zap.Int("project_id", id), zap.Error(err))
		return false
	}
	c.projectID = id
	c.tasks = tasks
	return true
}

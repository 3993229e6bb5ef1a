package models_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tracker/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func seedUser(t *testing.T, database *sql.DB, email string) int {
	t.Helper()
	var id int
	err := database.QueryRow(`INSERT INTO user (email, name, password_hash) VALUES (?, ?, 'x') RETURNING id`, email, "user "+email).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProject(t *testing.T, database *sql.DB, name string, owner int, startDate string) int {
	t.Helper()
	var id int
	err := database.QueryRow(`INSERT INTO project (name, owner, proj_start_date) VALUES (?, ?, ?) RETURNING id`, name, owner, startDate).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedTask(t *testing.T, database *sql.DB, projectID int, description, startDate string) int {
	t.Helper()
	var id int
	err := database.QueryRow(`INSERT INTO proj_tasks (description, owner_proj, task_start_date) VALUES (?, ?, ?) RETURNING id`, description, projectID, startDate).Scan(&id)
	require.NoError(t, err)
	return id
}

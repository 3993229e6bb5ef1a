package models

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// recentTaskLimit bounds how many tasks ride along with each project in the
// profile aggregate.
const recentTaskLimit = 3

const projectCols = `id, name, proj_start_date, proj_end_date, owner, participants`

// CreateProject inserts a project for owner and returns its assigned id. The
// RETURNING clause reads the id in the same statement, so no
// connection-affinity assumption is involved.
func CreateProject(db *sql.DB, name string, owner int) (int, error) {
	var id int
	err := db.QueryRow(`INSERT INTO project (name, owner) VALUES (?, ?) RETURNING id`, name, owner).Scan(&id)
	if err != nil {
		return 0, &AggregationError{Op: "create project", Err: err}
	}
	return id, nil
}

// GetProjectByID returns the project with the given id, or nil when no such
// project exists.
func GetProjectByID(db *sql.DB, id int) (*Project, error) {
	row := db.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ?`, id)
	p, err := scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &AggregationError{Op: "get project", Err: err}
	}
	return p, nil
}

func ListProjectsForUser(db *sql.DB, owner int) ([]Project, error) {
	rows, err := db.Query(`SELECT `+projectCols+` FROM project WHERE owner = ? ORDER BY proj_start_date DESC`, owner)
	if err != nil {
		return nil, &AggregationError{Op: "list projects", Err: err}
	}
	defer rows.Close()
	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, &AggregationError{Op: "list projects", Err: err}
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, &AggregationError{Op: "list projects", Err: err}
	}
	return projects, nil
}

func ListTasksForProject(db *sql.DB, projectID int) ([]ProjectTask, error) {
	rows, err := db.Query(`SELECT id, description, task_start_date, task_end_date, owner_proj, time_delta
		FROM proj_tasks WHERE owner_proj = ? ORDER BY task_start_date DESC`, projectID)
	if err != nil {
		return nil, &AggregationError{Op: "list tasks", Err: err}
	}
	defer rows.Close()
	var tasks []ProjectTask
	for rows.Next() {
		var t ProjectTask
		var end sql.NullString
		var delta sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Description, &t.StartDate, &end, &t.OwnerProj, &delta); err != nil {
			return nil, &AggregationError{Op: "list tasks", Err: err}
		}
		if end.Valid {
			t.EndDate = &end.String
		}
		if delta.Valid {
			t.TimeDelta = &delta.Int64
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &AggregationError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// LoadProjectsWithRecentTasks assembles, in one query, every project owned by
// userID together with up to recentTaskLimit of its most recent tasks. The
// left join keeps zero-task projects in the result with a single sentinel row;
// those emit Tasks == nil. Rows are grouped by project id rather than by
// contiguity, while project order (proj_start_date descending) and task order
// (task_start_date descending) follow the query.
func LoadProjectsWithRecentTasks(db *sql.DB, userID int) ([]ProjectWithTasks, error) {
	rows, err := db.Query(`
		SELECT p.id, p.name, p.proj_start_date, p.proj_end_date, p.owner, p.participants,
		       t.id, t.description, t.task_start_date, t.task_end_date, t.owner_proj, t.time_delta
		FROM project p
		LEFT JOIN (
			SELECT id, description, task_start_date, task_end_date, owner_proj, time_delta,
			       ROW_NUMBER() OVER (PARTITION BY owner_proj ORDER BY task_start_date DESC) AS rn
			FROM proj_tasks
		) t ON t.owner_proj = p.id AND t.rn <= ?
		WHERE p.owner = ?
		ORDER BY p.proj_start_date DESC, t.task_start_date DESC`, recentTaskLimit, userID)
	if err != nil {
		return nil, &AggregationError{Op: "load projects with tasks", Err: err}
	}
	defer rows.Close()

	index := map[int]int{}
	var out []ProjectWithTasks
	for rows.Next() {
		var p Project
		var projEnd sql.NullString
		var participants string
		var taskID sql.NullInt64
		var taskDesc, taskStart, taskEnd sql.NullString
		var taskOwner, taskDelta sql.NullInt64
		err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &projEnd, &p.Owner, &participants,
			&taskID, &taskDesc, &taskStart, &taskEnd, &taskOwner, &taskDelta)
		if err != nil {
			return nil, &AggregationError{Op: "load projects with tasks", Err: err}
		}
		i, seen := index[p.ID]
		if !seen {
			if projEnd.Valid {
				p.EndDate = &projEnd.String
			}
			p.Participants = ParseParticipants(participants)
			out = append(out, ProjectWithTasks{Project: p})
			i = len(out) - 1
			index[p.ID] = i
		}
		if taskID.Valid {
			t := ProjectTask{
				ID:          int(taskID.Int64),
				Description: taskDesc.String,
				StartDate:   taskStart.String,
				OwnerProj:   int(taskOwner.Int64),
			}
			if taskEnd.Valid {
				t.EndDate = &taskEnd.String
			}
			if taskDelta.Valid {
				t.TimeDelta = &taskDelta.Int64
			}
			out[i].Tasks = append(out[i].Tasks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &AggregationError{Op: "load projects with tasks", Err: err}
	}
	return out, nil
}

// UpdateProject sets a project's name and end date. Returns false when the id
// does not exist.
func UpdateProject(db *sql.DB, id int, name, endDate string) (bool, error) {
	res, err := db.Exec(`UPDATE project SET name = ?, proj_end_date = ? WHERE id = ?`, name, endDate, id)
	if err != nil {
		return false, &AggregationError{Op: "update project", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &AggregationError{Op: "update project", Err: err}
	}
	return n == 1, nil
}

// DeleteProject removes a project and, through the cascade, its tasks.
// Returns false when the id does not exist.
func DeleteProject(db *sql.DB, id int) (bool, error) {
	res, err := db.Exec(`DELETE FROM project WHERE id = ?`, id)
	if err != nil {
		return false, &AggregationError{Op: "delete project", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &AggregationError{Op: "delete project", Err: err}
	}
	return n == 1, nil
}

// AddTask inserts a task under a project and returns its assigned id. The
// start date comes from the column default (current time).
func AddTask(db *sql.DB, description string, projectID int) (int, error) {
	var id int
	err := db.QueryRow(`INSERT INTO proj_tasks (description, owner_proj) VALUES (?, ?) RETURNING id`, description, projectID).Scan(&id)
	if err != nil {
		return 0, &AggregationError{Op: "add task", Err: err}
	}
	return id, nil
}

// DeleteTask removes a task, scoped to its project so a crafted request
// cannot delete another project's task. Returns false when nothing matched.
func DeleteTask(db *sql.DB, id, projectID int) (bool, error) {
	res, err := db.Exec(`DELETE FROM proj_tasks WHERE id = ? AND owner_proj = ?`, id, projectID)
	if err != nil {
		return false, &AggregationError{Op: "delete task", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &AggregationError{Op: "delete task", Err: err}
	}
	return n == 1, nil
}

func scanProject(scan func(...any) error) (*Project, error) {
	var p Project
	var end sql.NullString
	var participants string
	if err := scan(&p.ID, &p.Name, &p.StartDate, &end, &p.Owner, &participants); err != nil {
		return nil, err
	}
	if end.Valid {
		p.EndDate = &end.String
	}
	p.Participants = ParseParticipants(participants)
	return &p, nil
}

// ParseParticipants decodes the comma-delimited participant column. Entries
// that do not parse as ids are dropped, not fatal.
func ParseParticipants(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// EncodeParticipants is the inverse of ParseParticipants.
func EncodeParticipants(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

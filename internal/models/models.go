package models

type User struct {
	ID           int
	Email        string
	Name         string
	PasswordHash string
	Created      string
	ProfilePic   string
	Admin        bool
	Premium      bool
}

type Project struct {
	ID           int
	Name         string
	StartDate    string
	EndDate      *string
	Owner        int
	Participants []int
}

type ProjectTask struct {
	ID          int
	Description string
	StartDate   string
	EndDate     *string
	OwnerProj   int
	TimeDelta   *int64
}

// ProjectWithTasks is a Project plus its most recent tasks, newest first.
// Tasks is nil when the project has none; callers can tell "no tasks" from
// "tasks not loaded" by whether they went through LoadProjectsWithRecentTasks.
type ProjectWithTasks struct {
	Project
	Tasks []ProjectTask
}

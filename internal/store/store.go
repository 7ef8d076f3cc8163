// Package store defines the entity model and the gateway contract the
// operation layer talks to. Two implementations exist: a PostgREST-style
// remote gateway (store/postgrest) and an embedded SQLite gateway
// (store/sqlite).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row fetches when no row matches.
// Callers tell it apart from backend failures with errors.Is.
var ErrNotFound = errors.New("store: not found")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// TimeLayout is the row timestamp format: RFC 3339 UTC with fixed
// millisecond precision, so lexicographic order is chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Now returns the current UTC time in TimeLayout.
func Now() string {
	return timeNow().UTC().Format(TimeLayout)
}

// ─── Vocabularies ───────────────────────────────────────────────────────────

// Task statuses, in kanban board order.
const (
	TaskBacklog    = "backlog"
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

// TaskStatuses lists the kanban columns in board order.
var TaskStatuses = []string{TaskBacklog, TaskTodo, TaskInProgress, TaskReview, TaskDone}

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectOnHold    = "on-hold"
	ProjectPlanning  = "planning"
)

// ProjectStatuses lists the recognized project states.
var ProjectStatuses = []string{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectPlanning}

// Priorities, shared by projects and tasks.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Priorities lists the recognized priority levels.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ValidTaskStatus reports whether s is a recognized kanban column.
func ValidTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ─── Entities ───────────────────────────────────────────────────────────────

// Workspace is the root of the containment hierarchy. Workspaces are
// created outside this system and read-only here.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Logo      string `json:"logo,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Project belongs to exactly one workspace. Progress is derived from task
// statuses and clamped to [0,100] on direct writes.
type Project struct {
	ID                string   `json:"id"`
	WorkspaceID       string   `json:"workspace_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Status            string   `json:"status"`
	Priority          string   `json:"priority"`
	Progress          int      `json:"progress"`
	Budget            *float64 `json:"budget,omitempty"`
	Spent             *float64 `json:"spent,omitempty"`
	DueDate           string   `json:"due_date,omitempty"`
	Client            string   `json:"client,omitempty"`
	TeamSize          *int     `json:"team_size,omitempty"`
	EstimatedDuration *int     `json:"estimated_duration,omitempty"`
	ItemType          string   `json:"item_type,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
}

// ProjectRef is the owning-project projection joined onto fetched tasks.
type ProjectRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WorkspaceID string `json:"workspace_id"`
}

// Task belongs to exactly one project. Order ranks tasks inside a column;
// it is assigned at creation and never renumbered.
type Task struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	Assignee    string      `json:"assignee,omitempty"`
	DueDate     string      `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Order       int         `json:"order"`
	Project     *ProjectRef `json:"project,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

// TeamMember is a read-only workspace-scoped auxiliary entity, used for
// summary counts only.
type TeamMember struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ─── Writes and filters ─────────────────────────────────────────────────────

// Fields is a partial-write column map. Absent keys are never written, so
// callers can distinguish "not supplied" from an explicit zero value.
type Fields map[string]any

// ProjectFilter narrows and orders project listings.
type ProjectFilter struct {
	WorkspaceID string
	Status      string
	OrderBy     string // column name; empty means backend default
	Descending  bool
	Limit       int // 0 means no limit
}

// TaskFilter narrows and orders task listings.
type TaskFilter struct {
	ProjectID   string
	ProjectIDs  []string // in-set match; ignored when ProjectID is set
	Status      string
	Statuses    []string // in-set match; ignored when Status is set
	Search      string   // case-insensitive substring against title and description
	WithProject bool     // join the owning-project projection
	OrderBy     string
	Descending  bool
	Limit       int
}

// ─── Gateway contract ───────────────────────────────────────────────────────

// Store is the datastore gateway. Single-row fetches return ErrNotFound
// when nothing matches; every other failure is a backend error.
type Store interface {
	WorkspaceExists(ctx context.Context, id string) (bool, error)
	GetWorkspace(ctx context.Context, id string) (*Workspace, error)
	ListWorkspaces(ctx context.Context, limit int) ([]Workspace, error)
	ListTeamMembers(ctx context.Context, workspaceID string) ([]TeamMember, error)

	ProjectExists(ctx context.Context, id string) (bool, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, f ProjectFilter) ([]Project, error)
	InsertProject(ctx context.Context, fields Fields) (*Project, error)
	UpdateProject(ctx context.Context, id string, fields Fields) (*Project, error)

	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]Task, error)
	InsertTask(ctx context.Context, fields Fields) (*Task, error)
	UpdateTask(ctx context.Context, id string, fields Fields) (*Task, error)
	DeleteTask(ctx context.Context, id string) error

	Close() error
}

// Package sqlite implements the store gateway on an embedded SQLite
// database, so corkboard can run without a remote backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/corkboardhq/corkboard/internal/store"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

var _ store.Store = (*Store)(nil)

const (
	projectColumns = "id, workspace_id, name, description, status, priority, progress, budget, spent, due_date, client, team_size, estimated_duration, item_type, created_at, updated_at"
	taskColumns    = `t.id, t.project_id, t.title, t.description, t.status, t.priority, t.assignee, t.due_date, t.tags, t."order", t.created_at, t.updated_at`
)

// Store is the embedded gateway.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path, applies the
// performance pragmas, and runs migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ─────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS workspaces (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL DEFAULT '',
			logo       TEXT NOT NULL DEFAULT '',
			owner_id   TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			id                 TEXT PRIMARY KEY,
			workspace_id       TEXT NOT NULL,
			name               TEXT NOT NULL,
			description        TEXT NOT NULL DEFAULT '',
			status             TEXT NOT NULL DEFAULT 'planning',
			priority           TEXT NOT NULL DEFAULT 'medium',
			progress           INTEGER NOT NULL DEFAULT 0,
			budget             REAL,
			spent              REAL,
			due_date           TEXT NOT NULL DEFAULT '',
			client             TEXT NOT NULL DEFAULT '',
			team_size          INTEGER,
			estimated_duration INTEGER,
			item_type          TEXT NOT NULL DEFAULT 'project',
			created_at         TEXT NOT NULL,
			updated_at         TEXT NOT NULL,
			FOREIGN KEY (workspace_id) REFERENCES workspaces(id)
		);

		CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_id);
		CREATE INDEX IF NOT EXISTS idx_projects_status    ON projects(status);
		CREATE INDEX IF NOT EXISTS idx_projects_updated   ON projects(updated_at DESC);

		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			project_id  TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'todo',
			priority    TEXT NOT NULL DEFAULT 'medium',
			assignee    TEXT NOT NULL DEFAULT '',
			due_date    TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '[]',
			"order"     INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status  ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at DESC);

		CREATE TABLE IF NOT EXISTS team_members (
			id           TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			name         TEXT NOT NULL,
			email        TEXT NOT NULL DEFAULT '',
			role         TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			FOREIGN KEY (workspace_id) REFERENCES workspaces(id)
		);

		CREATE INDEX IF NOT EXISTS idx_members_workspace ON team_members(workspace_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// quoteColumn protects the one column name that collides with a keyword.
func quoteColumn(c string) string {
	if c == "order" {
		return `"order"`
	}
	return c
}

// escapeLike neutralizes LIKE metacharacters so a search for "50%" matches
// the literal substring. Patterns built from it need ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// normalizeArg converts values the driver cannot take directly; tag slices
// persist as JSON text.
func normalizeArg(v any) any {
	switch t := v.(type) {
	case []string:
		b, _ := json.Marshal(t)
		return string(b)
	case []any:
		b, _ := json.Marshal(t)
		return string(b)
	}
	return v
}

func sortedKeys(fields store.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (s *Store) insertRow(ctx context.Context, table, id string, fields store.Fields) error {
	cols := []string{"id"}
	marks := []string{"?"}
	args := []any{id}
	for _, k := range sortedKeys(fields) {
		cols = append(cols, quoteColumn(k))
		marks = append(marks, "?")
		args = append(args, normalizeArg(fields[k]))
	}

	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: insert %s: %w", table, err)
	}
	return nil
}

func (s *Store) updateRow(ctx context.Context, table, id string, fields store.Fields) error {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, k := range sortedKeys(fields) {
		sets = append(sets, quoteColumn(k)+" = ?")
		args = append(args, normalizeArg(fields[k]))
	}
	args = append(args, id)

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (*store.Project, error) {
	var p store.Project
	var budget, spent sql.NullFloat64
	var teamSize, estimated sql.NullInt64
	err := r.Scan(
		&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Status, &p.Priority, &p.Progress,
		&budget, &spent, &p.DueDate, &p.Client, &teamSize, &estimated, &p.ItemType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if budget.Valid {
		v := budget.Float64
		p.Budget = &v
	}
	if spent.Valid {
		v := spent.Float64
		p.Spent = &v
	}
	if teamSize.Valid {
		v := int(teamSize.Int64)
		p.TeamSize = &v
	}
	if estimated.Valid {
		v := int(estimated.Int64)
		p.EstimatedDuration = &v
	}
	return &p, nil
}

func scanTask(r rowScanner, withProject bool) (*store.Task, error) {
	var t store.Task
	var tags string
	dest := []any{
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Assignee, &t.DueDate, &tags, &t.Order, &t.CreatedAt, &t.UpdatedAt,
	}
	var ref store.ProjectRef
	if withProject {
		dest = append(dest, &ref.ID, &ref.Name, &ref.WorkspaceID)
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	if tags != "" && tags != "[]" {
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return nil, fmt.Errorf("sqlite: decode tags for task %s: %w", t.ID, err)
		}
	}
	if withProject {
		t.Project = &ref
	}
	return &t, nil
}

func (s *Store) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: check %s: %w", table, err)
	}
	return true, nil
}

// ─── Workspaces ─────────────────────────────────────────────────────────────

func (s *Store) WorkspaceExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "workspaces", id)
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (*store.Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, logo, owner_id, created_at, updated_at FROM workspaces WHERE id = ?`, id)
	var w store.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.Color, &w.Logo, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get workspace: %w", err)
	}
	return &w, nil
}

func (s *Store) ListWorkspaces(ctx context.Context, limit int) ([]store.Workspace, error) {
	query := `SELECT id, name, color, logo, owner_id, created_at, updated_at FROM workspaces ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list workspaces: %w", err)
	}
	defer rows.Close()

	results := make([]store.Workspace, 0)
	for rows.Next() {
		var w store.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Color, &w.Logo, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, w)
	}
	return results, rows.Err()
}

func (s *Store) ListTeamMembers(ctx context.Context, workspaceID string) ([]store.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace_id, name, email, role, created_at, updated_at
		 FROM team_members WHERE workspace_id = ? ORDER BY name`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list team members: %w", err)
	}
	defer rows.Close()

	results := make([]store.TeamMember, 0)
	for rows.Next() {
		var m store.TeamMember
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.Name, &m.Email, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// CreateWorkspace inserts a workspace row. Workspaces are normally managed
// outside corkboard; this exists for the embedded bootstrap and tests.
func (s *Store) CreateWorkspace(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	ts := store.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, ts, ts)
	if err != nil {
		return "", fmt.Errorf("sqlite: create workspace: %w", err)
	}
	return id, nil
}

// CreateTeamMember inserts a team member row, for bootstrap and tests.
func (s *Store) CreateTeamMember(ctx context.Context, workspaceID, name, role string) (string, error) {
	id := uuid.NewString()
	ts := store.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_members (id, workspace_id, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, workspaceID, name, role, ts, ts)
	if err != nil {
		return "", fmt.Errorf("sqlite: create team member: %w", err)
	}
	return id, nil
}

// EnsureWorkspace makes sure at least one workspace exists, creating one
// with the given name on a fresh database. It returns the id of the row it
// created, or "" when workspaces were already present.
func (s *Store) EnsureWorkspace(ctx context.Context, name string) (string, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces`).Scan(&count); err != nil {
		return "", fmt.Errorf("sqlite: count workspaces: %w", err)
	}
	if count > 0 {
		return "", nil
	}
	return s.CreateWorkspace(ctx, name)
}

// ─── Projects ───────────────────────────────────────────────────────────────

func (s *Store) ProjectExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "projects", id)
}

func (s *Store) GetProject(ctx context.Context, id string) (*store.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]store.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE 1=1"
	args := []any{}

	if f.WorkspaceID != "" {
		query += " AND workspace_id = ?"
		args = append(args, f.WorkspaceID)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.OrderBy != "" {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		query += " ORDER BY " + quoteColumn(f.OrderBy) + " " + dir
	}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list projects: %w", err)
	}
	defer rows.Close()

	results := make([]store.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *p)
	}
	return results, rows.Err()
}

func (s *Store) InsertProject(ctx context.Context, fields store.Fields) (*store.Project, error) {
	id := uuid.NewString()
	if err := s.insertRow(ctx, "projects", id, fields); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, id)
}

func (s *Store) UpdateProject(ctx context.Context, id string, fields store.Fields) (*store.Project, error) {
	if err := s.updateRow(ctx, "projects", id, fields); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, id)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *Store) getTask(ctx context.Context, id string, withProject bool) (*store.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks t WHERE t.id = ?"
	if withProject {
		query = "SELECT " + taskColumns + `, p.id, p.name, p.workspace_id
			FROM tasks t JOIN projects p ON p.id = t.project_id WHERE t.id = ?`
	}

	row := s.db.QueryRowContext(ctx, query, id)
	t, err := scanTask(row, withProject)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get task: %w", err)
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*store.Task, error) {
	return s.getTask(ctx, id, true)
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]store.Task, error) {
	query := "SELECT " + taskColumns
	if f.WithProject {
		query += ", p.id, p.name, p.workspace_id FROM tasks t JOIN projects p ON p.id = t.project_id WHERE 1=1"
	} else {
		query += " FROM tasks t WHERE 1=1"
	}
	args := []any{}

	switch {
	case f.ProjectID != "":
		query += " AND t.project_id = ?"
		args = append(args, f.ProjectID)
	case len(f.ProjectIDs) > 0:
		query += " AND t.project_id IN (" + placeholders(len(f.ProjectIDs)) + ")"
		for _, id := range f.ProjectIDs {
			args = append(args, id)
		}
	}

	switch {
	case f.Status != "":
		query += " AND t.status = ?"
		args = append(args, f.Status)
	case len(f.Statuses) > 0:
		query += " AND t.status IN (" + placeholders(len(f.Statuses)) + ")"
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}

	if f.Search != "" {
		needle := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query += ` AND (LOWER(t.title) LIKE ? ESCAPE '\' OR LOWER(t.description) LIKE ? ESCAPE '\')`
		args = append(args, needle, needle)
	}

	if f.OrderBy != "" {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		query += ` ORDER BY t.` + quoteColumn(f.OrderBy) + " " + dir
	}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tasks: %w", err)
	}
	defer rows.Close()

	results := make([]store.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows, f.WithProject)
		if err != nil {
			return nil, err
		}
		results = append(results, *t)
	}
	return results, rows.Err()
}

func (s *Store) InsertTask(ctx context.Context, fields store.Fields) (*store.Task, error) {
	id := uuid.NewString()
	if err := s.insertRow(ctx, "tasks", id, fields); err != nil {
		return nil, err
	}
	return s.getTask(ctx, id, false)
}

func (s *Store) UpdateTask(ctx context.Context, id string, fields store.Fields) (*store.Task, error) {
	if err := s.updateRow(ctx, "tasks", id, fields); err != nil {
		return nil, err
	}
	return s.getTask(ctx, id, false)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Package postgrest implements the store gateway against a PostgREST-style
// HTTP API: equality and in-set filters, ilike substring matching, ordering,
// limits, and representation-returning writes under /rest/v1/{table}.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/store"
)

const (
	tableWorkspaces  = "workspaces"
	tableProjects    = "projects"
	tableTasks       = "tasks"
	tableTeamMembers = "team_members"

	// Owning-project projection embedded onto task rows.
	taskProjectSelect = "*,project:projects(id,name,workspace_id)"
)

var _ store.Store = (*Store)(nil)

// Store talks to the remote backend. The shared credential is forwarded on
// every request as both an apikey header and a bearer token.
type Store struct {
	baseURL string
	key     string
	client  *http.Client
	log     *logging.Logger
}

// New builds a gateway for the backend at baseURL.
func New(baseURL, key string, log *logging.Logger) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Close is a no-op for the HTTP gateway.
func (s *Store) Close() error { return nil }

// ─── Request plumbing ───────────────────────────────────────────────────────

func (s *Store) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	endpoint := s.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("postgrest: marshal %s body: %w", table, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("postgrest: build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	s.log.Debug("store request", "method", method, "table", table)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("postgrest: %s %s: status %d: %s",
			method, table, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("postgrest: decode %s response: %w", table, err)
		}
	}
	return nil
}

// getOne fetches at most one row and maps an empty result to ErrNotFound.
func getOne[T any](ctx context.Context, s *Store, table string, query url.Values) (*T, error) {
	query.Set("limit", "1")
	var rows []T
	if err := s.do(ctx, http.MethodGet, table, query, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

// writeOne sends a representation-returning write and decodes the row.
func writeOne[T any](ctx context.Context, s *Store, method, table string, query url.Values, body any) (*T, error) {
	var rows []T
	if err := s.do(ctx, method, table, query, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// A PATCH matching no rows returns an empty representation.
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) exists(ctx context.Context, table, id string) (bool, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")
	var rows []struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodGet, table, q, nil, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// ilikePattern builds the or=() substring clause for a search query.
// Commas, parens, and quotes would break the boolean-grammar syntax, and a
// raw asterisk turns into a wildcard server-side, so all are stripped; %,
// _, and backslash are escaped so a search for "50%" matches it literally.
func ilikePattern(query string) string {
	clean := strings.NewReplacer(",", " ", "(", " ", ")", " ", `"`, " ", "*", " ").Replace(query)
	clean = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.TrimSpace(clean))
	pattern := "*" + clean + "*"
	return fmt.Sprintf("(title.ilike.%s,description.ilike.%s)", pattern, pattern)
}

func orderParam(column string, descending bool) string {
	dir := "asc"
	if descending {
		dir = "desc"
	}
	return column + "." + dir
}

// ─── Workspaces ─────────────────────────────────────────────────────────────

func (s *Store) WorkspaceExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, tableWorkspaces, id)
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (*store.Workspace, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return getOne[store.Workspace](ctx, s, tableWorkspaces, q)
}

func (s *Store) ListWorkspaces(ctx context.Context, limit int) ([]store.Workspace, error) {
	q := url.Values{}
	q.Set("order", orderParam("updated_at", true))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	rows := make([]store.Workspace, 0)
	if err := s.do(ctx, http.MethodGet, tableWorkspaces, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListTeamMembers(ctx context.Context, workspaceID string) ([]store.TeamMember, error) {
	q := url.Values{}
	q.Set("workspace_id", "eq."+workspaceID)
	rows := make([]store.TeamMember, 0)
	if err := s.do(ctx, http.MethodGet, tableTeamMembers, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ─── Projects ───────────────────────────────────────────────────────────────

func (s *Store) ProjectExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, tableProjects, id)
}

func (s *Store) GetProject(ctx context.Context, id string) (*store.Project, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return getOne[store.Project](ctx, s, tableProjects, q)
}

func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]store.Project, error) {
	q := url.Values{}
	if f.WorkspaceID != "" {
		q.Set("workspace_id", "eq."+f.WorkspaceID)
	}
	if f.Status != "" {
		q.Set("status", "eq."+f.Status)
	}
	if f.OrderBy != "" {
		q.Set("order", orderParam(f.OrderBy, f.Descending))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	rows := make([]store.Project, 0)
	if err := s.do(ctx, http.MethodGet, tableProjects, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) InsertProject(ctx context.Context, fields store.Fields) (*store.Project, error) {
	return writeOne[store.Project](ctx, s, http.MethodPost, tableProjects, url.Values{}, fields)
}

func (s *Store) UpdateProject(ctx context.Context, id string, fields store.Fields) (*store.Project, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return writeOne[store.Project](ctx, s, http.MethodPatch, tableProjects, q, fields)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *Store) GetTask(ctx context.Context, id string) (*store.Task, error) {
	q := url.Values{}
	q.Set("select", taskProjectSelect)
	q.Set("id", "eq."+id)
	return getOne[store.Task](ctx, s, tableTasks, q)
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]store.Task, error) {
	q := url.Values{}
	if f.WithProject {
		q.Set("select", taskProjectSelect)
	}
	switch {
	case f.ProjectID != "":
		q.Set("project_id", "eq."+f.ProjectID)
	case len(f.ProjectIDs) > 0:
		q.Set("project_id", "in.("+strings.Join(f.ProjectIDs, ",")+")")
	}
	switch {
	case f.Status != "":
		q.Set("status", "eq."+f.Status)
	case len(f.Statuses) > 0:
		q.Set("status", "in.("+strings.Join(f.Statuses, ",")+")")
	}
	if f.Search != "" {
		q.Set("or", ilikePattern(f.Search))
	}
	if f.OrderBy != "" {
		q.Set("order", orderParam(f.OrderBy, f.Descending))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	rows := make([]store.Task, 0)
	if err := s.do(ctx, http.MethodGet, tableTasks, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) InsertTask(ctx context.Context, fields store.Fields) (*store.Task, error) {
	return writeOne[store.Task](ctx, s, http.MethodPost, tableTasks, url.Values{}, fields)
}

func (s *Store) UpdateTask(ctx context.Context, id string, fields store.Fields) (*store.Task, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return writeOne[store.Task](ctx, s, http.MethodPatch, tableTasks, q, fields)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return s.do(ctx, http.MethodDelete, tableTasks, q, nil, nil)
}

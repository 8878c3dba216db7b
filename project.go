package todoist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyName is returned, before any remote call is made, when adding or renaming a project with a blank name, or
// adding or updating a task with blank content.
var ErrEmptyName = errors.New("name cannot be empty")

// Project describes a Todoist project as returned by the REST API. Treat as read-only; use ProjectPatch with
// AddProject or UpdateProject to change a project.
type Project struct {
	ID             ID     `json:"id"`
	ParentID       ID     `json:"parent_id,omitempty"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	Order          int    `json:"order"`
	CommentCount   int    `json:"comment_count"`
	IsShared       bool   `json:"is_shared"`
	IsFavorite     bool   `json:"is_favorite"`
	IsInboxProject bool   `json:"is_inbox_project"`
	IsTeamInbox    bool   `json:"is_team_inbox"`
	ViewStyle      string `json:"view_style"`
	URL            string `json:"url"`
}

// ProjectPatch holds the attributes of a new project, or the attributes to change in an existing one.
type ProjectPatch struct {
	attrs attrs
	err   error
}

func NewProjectPatch() *ProjectPatch {
	return &ProjectPatch{attrs: make(attrs)}
}

func (project *ProjectPatch) WithName(value string) *ProjectPatch {
	project.setErr(project.attrs.set("name", value))
	return project
}

// WithColor takes one of the color names documented by Todoist, e.g., "berry_red" or "charcoal".
func (project *ProjectPatch) WithColor(value string) *ProjectPatch {
	project.setErr(project.attrs.set("color", value))
	return project
}

func (project *ProjectPatch) WithFavorite(value bool) *ProjectPatch {
	project.setErr(project.attrs.set("is_favorite", value))
	return project
}

// WithViewStyle takes "list" or "board".
func (project *ProjectPatch) WithViewStyle(value string) *ProjectPatch {
	if value != "list" && value != "board" {
		project.setErr(fmt.Errorf("view style %q: must be list or board", value))
		return project
	}
	project.setErr(project.attrs.set("view_style", value))
	return project
}

// WithParentID only has an effect when adding a project.
func (project *ProjectPatch) WithParentID(value ID) *ProjectPatch {
	project.setErr(project.attrs.set("parent_id", value))
	return project
}

func (project *ProjectPatch) setErr(err error) {
	if project.err == nil {
		project.err = err
	}
}

// validate checks the name when present, and requires it if required is set.
func (project *ProjectPatch) validate(required bool) error {
	if project.err != nil {
		return project.err
	}
	name, ok := project.attrs.str("name")
	if (ok || required) && strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (project *ProjectPatch) MarshalJSON() ([]byte, error) {
	if project.err != nil {
		return nil, project.err
	}
	return project.attrs.marshal(), nil
}

// GetProjects fetches all projects and replaces the local copy with them.
func (c *Client) GetProjects(ctx context.Context) ([]*Project, error) {
	var projects []*Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	c.store.ReplaceProjects(projects)
	return projects, nil
}

// GetProject fetches a single project and mirrors it locally.
func (c *Client) GetProject(ctx context.Context, id ID) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id.String(), nil, nil, &project); err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	c.store.AddProject(&project)
	return &project, nil
}

// AddProject creates a project. The patch must carry a non-blank name.
func (c *Client) AddProject(ctx context.Context, patch *ProjectPatch) (*Project, error) {
	if err := patch.validate(true); err != nil {
		return nil, fmt.Errorf("add project: %w", err)
	}
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, patch, &project); err != nil {
		return nil, fmt.Errorf("add project: %w", err)
	}
	c.store.AddProject(&project)
	c.mutated()
	return &project, nil
}

// UpdateProject changes the attributes set in the patch and mirrors the project returned by the server.
func (c *Client) UpdateProject(ctx context.Context, id ID, patch *ProjectPatch) (*Project, error) {
	if err := patch.validate(false); err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects/"+id.String(), nil, patch, &project); err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	c.store.UpdateProject(&project)
	c.mutated()
	return &project, nil
}

// DeleteProject deletes a project, and with it all of its tasks.
func (c *Client) DeleteProject(ctx context.Context, id ID) error {
	if err := c.do(ctx, http.MethodDelete, "/projects/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	c.store.RemoveProject(id)
	c.mutated()
	return nil
}

// SetFavorite adds the project to, or removes it from, the favorites. The current name is sent along with the
// favorite flag, so the project is looked up locally first and fetched if unknown.
func (c *Client) SetFavorite(ctx context.Context, id ID, favorite bool) (*Project, error) {
	current, ok := c.store.ProjectByID(id)
	if !ok {
		var err error
		if current, err = c.GetProject(ctx, id); err != nil {
			return nil, fmt.Errorf("set favorite: %w", err)
		}
	}
	return c.UpdateProject(ctx, id, NewProjectPatch().WithName(current.Name).WithFavorite(favorite))
}

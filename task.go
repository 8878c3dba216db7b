package todoist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Task describes a Todoist task as returned by the REST API. It should be treated as read-only. Mutating client
// methods use TaskPatch.
type Task struct {
	ID           ID       `json:"id"`
	ProjectID    ID       `json:"project_id"`
	SectionID    ID       `json:"section_id,omitempty"`
	ParentID     ID       `json:"parent_id,omitempty"`
	Content      string   `json:"content"`
	Description  string   `json:"description"`
	IsCompleted  bool     `json:"is_completed"`
	Labels       []string `json:"labels"`
	Priority     int      `json:"priority"`
	Order        int      `json:"order"`
	Due          *Due     `json:"due"`
	URL          string   `json:"url"`
	CommentCount int      `json:"comment_count"`
	CreatedAt    string   `json:"created_at"`
	CreatorID    ID       `json:"creator_id,omitempty"`
	AssigneeID   ID       `json:"assignee_id,omitempty"`
}

func (task *Task) clone() *Task {
	c := *task
	if task.Labels != nil {
		c.Labels = append([]string(nil), task.Labels...)
	}
	if task.Due != nil {
		due := *task.Due
		c.Due = &due
	}
	return &c
}

// TaskPatch describes a new task or an update to an existing one. (The setter methods With* might incur an error,
// which will surface when marshalling to JSON, i.e., when the patch is sent.)
type TaskPatch struct {
	attrs attrs
	err   error
}

func NewTaskPatch() *TaskPatch {
	return &TaskPatch{attrs: make(attrs)}
}

func (task *TaskPatch) WithContent(value string) *TaskPatch {
	task.setErr(task.attrs.set("content", value))
	return task
}

func (task *TaskPatch) WithDescription(value string) *TaskPatch {
	task.setErr(task.attrs.set("description", value))
	return task
}

// WithProjectID is only honoured when adding a task. The API does not allow changing the project of an existing
// task; see MoveTask.
func (task *TaskPatch) WithProjectID(value ID) *TaskPatch {
	task.setErr(task.attrs.set("project_id", value))
	return task
}

// WithParentID makes the new task a subtask of the given one, in the parent's project. Like WithProjectID, it is
// only honoured when adding a task.
func (task *TaskPatch) WithParentID(value ID) *TaskPatch {
	task.setErr(task.attrs.set("parent_id", value))
	return task
}

func (task *TaskPatch) WithSectionID(value ID) *TaskPatch {
	task.setErr(task.attrs.set("section_id", value))
	return task
}

// WithLabels sets the task labels by name. With no arguments, it clears them.
func (task *TaskPatch) WithLabels(value ...string) *TaskPatch {
	if value == nil {
		value = []string{}
	}
	task.setErr(task.attrs.set("labels", value))
	return task
}

// WithPriority takes a value from 1 (normal) to 4 (urgent).
func (task *TaskPatch) WithPriority(value int) *TaskPatch {
	if value < 1 || value > 4 {
		task.setErr(fmt.Errorf("priority %d: must be between 1 and 4", value))
		return task
	}
	task.setErr(task.attrs.set("priority", value))
	return task
}

// WithDueString sets a due date in natural language, e.g., "tomorrow at 12" or "every monday".
func (task *TaskPatch) WithDueString(value string) *TaskPatch {
	task.setErr(task.attrs.set("due_string", value))
	return task
}

// WithDueDate sets a full-day due date in the form 2019-08-07.
func (task *TaskPatch) WithDueDate(value string) *TaskPatch {
	task.setErr(task.attrs.set("due_date", value))
	return task
}

// WithDueDatetime sets a due date and time in RFC3339 format, e.g., 2019-08-07T21:20:34Z.
func (task *TaskPatch) WithDueDatetime(value string) *TaskPatch {
	task.setErr(task.attrs.set("due_datetime", value))
	return task
}

func (task *TaskPatch) setErr(err error) {
	if task.err == nil {
		task.err = err
	}
}

func (task *TaskPatch) validate(required bool) error {
	if task.err != nil {
		return task.err
	}
	content, ok := task.attrs.str("content")
	if (ok || required) && strings.TrimSpace(content) == "" {
		return ErrEmptyName
	}
	return nil
}

// Empty reports whether no attribute has been set.
func (task *TaskPatch) Empty() bool {
	return len(task.attrs) == 0 && task.err == nil
}

// MarshalJSON implements json.Marshaler.
func (task *TaskPatch) MarshalJSON() ([]byte, error) {
	if task.err != nil {
		return nil, task.err
	}
	return task.attrs.marshal(), nil
}

// TaskFilter narrows down GetTasks. All fields are optional; the zero value fetches all active tasks.
type TaskFilter struct {
	ProjectID ID
	SectionID ID
	Label     string
	// Filter is a Todoist filter expression, e.g., "today | overdue".
	Filter string
	IDs    []ID
}

func (f TaskFilter) query() url.Values {
	q := make(url.Values)
	if f.ProjectID != "" {
		q.Set("project_id", f.ProjectID.String())
	}
	if f.SectionID != "" {
		q.Set("section_id", f.SectionID.String())
	}
	if f.Label != "" {
		q.Set("label", f.Label)
	}
	if f.Filter != "" {
		q.Set("filter", f.Filter)
	}
	if len(f.IDs) != 0 {
		ids := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			ids[i] = id.String()
		}
		q.Set("ids", strings.Join(ids, ","))
	}
	return q
}

// onlyProject reports whether the filter selects exactly the active tasks of one project.
func (f TaskFilter) onlyProject() bool {
	return f.ProjectID != "" && f.SectionID == "" && f.Label == "" && f.Filter == "" && len(f.IDs) == 0
}

// GetTasks fetches active tasks matching the filter. When the filter is empty or only names a project, the
// fetched tasks replace the local tasks of that scope, so tasks completed or deleted elsewhere disappear.
// Otherwise they are merged in.
func (c *Client) GetTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	var tasks []*Task
	if err := c.do(ctx, http.MethodGet, "/tasks", filter.query(), nil, &tasks); err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	switch {
	case filter.onlyProject():
		c.store.ReplaceTasks(filter.ProjectID, tasks)
	case len(filter.query()) == 0:
		c.store.ReplaceTasks("", tasks)
	default:
		for _, task := range tasks {
			c.store.AddTask(task)
		}
	}
	return tasks, nil
}

// GetTask fetches a single task and mirrors it locally.
func (c *Client) GetTask(ctx context.Context, id ID) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, nil, &task); err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	c.store.AddTask(&task)
	return &task, nil
}

// AddTask creates a task. The patch must carry non-blank content. Without a project id the task lands in the
// inbox.
func (c *Client) AddTask(ctx context.Context, patch *TaskPatch) (*Task, error) {
	if err := patch.validate(true); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, patch, &task); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	c.store.AddTask(&task)
	c.mutated()
	return &task, nil
}

// UpdateTask changes the attributes set in the patch and mirrors the task returned by the server.
func (c *Client) UpdateTask(ctx context.Context, id ID, patch *TaskPatch) (*Task, error) {
	if err := patch.validate(false); err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	if _, ok := patch.attrs["project_id"]; ok {
		return nil, fmt.Errorf("update task %s: project can not be changed by update, move the task instead", id)
	}
	if _, ok := patch.attrs["parent_id"]; ok {
		return nil, fmt.Errorf("update task %s: parent can not be changed by update", id)
	}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks/"+id.String(), nil, patch, &task); err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	c.store.UpdateTask(&task)
	c.mutated()
	return &task, nil
}

// CloseTask completes a task. Since only active tasks are mirrored, the task leaves the local store. Recurring
// tasks are rescheduled by the server instead; the next pull brings them back.
func (c *Client) CloseTask(ctx context.Context, id ID) error {
	if err := c.do(ctx, http.MethodPost, "/tasks/"+id.String()+"/close", nil, nil, nil); err != nil {
		return fmt.Errorf("close task %s: %w", id, err)
	}
	c.store.RemoveTask(id)
	c.mutated()
	return nil
}

// ReopenTask undoes CloseTask and fetches the reopened task.
func (c *Client) ReopenTask(ctx context.Context, id ID) (*Task, error) {
	if err := c.do(ctx, http.MethodPost, "/tasks/"+id.String()+"/reopen", nil, nil, nil); err != nil {
		return nil, fmt.Errorf("reopen task %s: %w", id, err)
	}
	c.mutated()
	return c.GetTask(ctx, id)
}

func (c *Client) DeleteTask(ctx context.Context, id ID) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	c.store.RemoveTask(id)
	c.mutated()
	return nil
}

// MoveTask moves a task to another project. The REST API can not change a task's project, so the task is copied
// into the target project (content, description, labels, priority and due date), its subtasks are copied under the
// copy, at any depth, and the original is deleted, which deletes its subtasks too. The returned task has a new id.
// Comments are not carried over. If the task itself can not be copied, the original is left alone. If a subtask
// can not be copied, or the original can not be deleted, the original is kept and the copy is returned along with
// the error.
func (c *Client) MoveTask(ctx context.Context, id ID, projectID ID) (*Task, error) {
	task, ok := c.store.TaskByID(id)
	if !ok {
		var err error
		if task, err = c.GetTask(ctx, id); err != nil {
			return nil, fmt.Errorf("move task: %w", err)
		}
	}
	if task.ProjectID == projectID {
		return task, nil
	}
	// Subtasks are only listed along with the rest of the project.
	if _, err := c.GetTasks(ctx, TaskFilter{ProjectID: task.ProjectID}); err != nil {
		return nil, fmt.Errorf("move task %s: %w", id, err)
	}
	moved, err := c.AddTask(ctx, copyPatch(task).WithProjectID(projectID))
	if err != nil {
		return nil, fmt.Errorf("move task %s to project %s: %w", id, projectID, err)
	}
	if err := c.copySubtasks(ctx, id, moved.ID); err != nil {
		return moved, fmt.Errorf("move task %s: copied as %s, but not all subtasks: %w", id, moved.ID, err)
	}
	if err := c.DeleteTask(ctx, id); err != nil {
		return moved, fmt.Errorf("move task %s: copied as %s, but: %w", id, moved.ID, err)
	}
	return moved, nil
}

func (c *Client) copySubtasks(ctx context.Context, from, to ID) error {
	for _, sub := range c.store.Subtasks(from) {
		copied, err := c.AddTask(ctx, copyPatch(sub).WithParentID(to))
		if err != nil {
			return err
		}
		if err := c.copySubtasks(ctx, sub.ID, copied.ID); err != nil {
			return err
		}
	}
	return nil
}

// copyPatch returns a patch recreating the task's content, description, labels, priority and due date.
func copyPatch(task *Task) *TaskPatch {
	patch := NewTaskPatch().
		WithContent(task.Content).
		WithDescription(task.Description)
	if len(task.Labels) != 0 {
		patch.WithLabels(task.Labels...)
	}
	if task.Priority != 0 {
		patch.WithPriority(task.Priority)
	}
	if due := task.Due; due != nil {
		switch {
		case due.IsRecurring && due.String != "":
			patch.WithDueString(due.String)
		case due.Datetime != "":
			patch.WithDueDatetime(due.Datetime)
		case due.Date != "":
			patch.WithDueDate(due.Date)
		}
	}
	return patch
}

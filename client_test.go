package todoist_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "0123456789abcdef"

type recordedRequest struct {
	method        string
	path          string
	authorization string
	requestID     string
}

// fakeAPI is a minimal in-memory stand-in for the REST API.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	projects []*todoist.Project
	tasks    []*todoist.Task
	labels   []*todoist.Label
	comments []*todoist.Comment
	requests []recordedRequest

	// Keyed by pattern, e.g., "POST /tasks", holds the status code to fail the next matching request with.
	failures map[string]int
	// Keyed by pattern, the number of matching requests to let through before the failure applies.
	skips map[string]int
}

type taskBody struct {
	Content     *string  `json:"content"`
	Description *string  `json:"description"`
	ProjectID   *string  `json:"project_id"`
	ParentID    *string  `json:"parent_id"`
	Labels      []string `json:"labels"`
	Priority    *int     `json:"priority"`
	DueString   *string  `json:"due_string"`
	DueDate     *string  `json:"due_date"`
	DueDatetime *string  `json:"due_datetime"`
}

type projectBody struct {
	Name       *string `json:"name"`
	IsFavorite *bool   `json:"is_favorite"`
	Color      *string `json:"color"`
}

func newFakeAPI(t *testing.T, opts ...todoist.ClientOption) (*fakeAPI, *todoist.Client) {
	t.Helper()
	api := &fakeAPI{nextID: 1000, failures: make(map[string]int), skips: make(map[string]int)}
	api.projects = append(api.projects, &todoist.Project{ID: "1", Name: "Inbox", IsInboxProject: true})
	mux := http.NewServeMux()
	api.routes(mux)
	ts := httptest.NewServer(api.record(mux))
	t.Cleanup(ts.Close)
	opts = append([]todoist.ClientOption{
		todoist.WithEndpoint(ts.URL),
		todoist.WithHTTPClient(ts.Client()),
		todoist.WithRateLimit(0, 0),
	}, opts...)
	client, err := todoist.NewClient(testToken, opts...)
	require.Nil(t, err)
	return api, client
}

func (api *fakeAPI) id() todoist.ID {
	api.nextID++
	return todoist.ID(strconv.Itoa(api.nextID))
}

func (api *fakeAPI) fail(pattern string, code int) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.failures[pattern] = code
}

// failAfter fails the matching request that follows the next skip ones.
func (api *fakeAPI) failAfter(pattern string, skip, code int) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.failures[pattern] = code
	api.skips[pattern] = skip
}

func (api *fakeAPI) requestCount() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return len(api.requests)
}

func (api *fakeAPI) lastRequest() recordedRequest {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.requests[len(api.requests)-1]
}

func (api *fakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			requestID:     r.Header.Get("X-Request-Id"),
		})
		api.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handle registers a handler that runs with the lock held, unless a failure was injected for the pattern.
func (api *fakeAPI) handle(mux *http.ServeMux, pattern string, h func(w http.ResponseWriter, r *http.Request)) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		if code, ok := api.failures[pattern]; ok {
			if api.skips[pattern] > 0 {
				api.skips[pattern]--
				h(w, r)
				return
			}
			delete(api.failures, pattern)
			http.Error(w, "injected failure", code)
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (api *fakeAPI) findProject(id string) *todoist.Project {
	for _, p := range api.projects {
		if p.ID == todoist.ID(id) {
			return p
		}
	}
	return nil
}

func (api *fakeAPI) findTask(id string) *todoist.Task {
	for _, t := range api.tasks {
		if t.ID == todoist.ID(id) {
			return t
		}
	}
	return nil
}

func (api *fakeAPI) routes(mux *http.ServeMux) {
	api.handle(mux, "GET /projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.projects)
	})
	api.handle(mux, "GET /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := api.findProject(r.PathValue("id"))
		if p == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, p)
	})
	api.handle(mux, "POST /projects", func(w http.ResponseWriter, r *http.Request) {
		var body projectBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		p := &todoist.Project{ID: api.id(), Name: *body.Name, Order: len(api.projects)}
		if body.IsFavorite != nil {
			p.IsFavorite = *body.IsFavorite
		}
		api.projects = append(api.projects, p)
		writeJSON(w, p)
	})
	api.handle(mux, "POST /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := api.findProject(r.PathValue("id"))
		if p == nil {
			http.NotFound(w, r)
			return
		}
		var body projectBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Name != nil {
			p.Name = *body.Name
		}
		if body.IsFavorite != nil {
			p.IsFavorite = *body.IsFavorite
		}
		if body.Color != nil {
			p.Color = *body.Color
		}
		writeJSON(w, p)
	})
	api.handle(mux, "DELETE /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := todoist.ID(r.PathValue("id"))
		if api.findProject(id.String()) == nil {
			http.NotFound(w, r)
			return
		}
		var projects []*todoist.Project
		for _, p := range api.projects {
			if p.ID != id {
				projects = append(projects, p)
			}
		}
		api.projects = projects
		w.WriteHeader(http.StatusNoContent)
	})
	api.handle(mux, "GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		tasks := []*todoist.Task{}
		projectID := todoist.ID(r.URL.Query().Get("project_id"))
		for _, t := range api.tasks {
			if t.IsCompleted || (projectID != "" && t.ProjectID != projectID) {
				continue
			}
			tasks = append(tasks, t)
		}
		writeJSON(w, tasks)
	})
	api.handle(mux, "GET /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		t := api.findTask(r.PathValue("id"))
		if t == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, t)
	})
	api.handle(mux, "POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		var body taskBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		t := &todoist.Task{ID: api.id(), ProjectID: "1", Content: *body.Content, Priority: 1, Labels: []string{}}
		api.applyTask(t, body)
		if body.ProjectID != nil {
			t.ProjectID = todoist.ID(*body.ProjectID)
		}
		if body.ParentID != nil {
			parent := api.findTask(*body.ParentID)
			if parent == nil {
				http.Error(w, "no such parent", http.StatusBadRequest)
				return
			}
			t.ParentID = parent.ID
			t.ProjectID = parent.ProjectID
		}
		api.tasks = append(api.tasks, t)
		writeJSON(w, t)
	})
	api.handle(mux, "POST /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		t := api.findTask(r.PathValue("id"))
		if t == nil {
			http.NotFound(w, r)
			return
		}
		var body taskBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.applyTask(t, body)
		writeJSON(w, t)
	})
	api.handle(mux, "POST /tasks/{id}/close", func(w http.ResponseWriter, r *http.Request) {
		t := api.findTask(r.PathValue("id"))
		if t == nil {
			http.NotFound(w, r)
			return
		}
		t.IsCompleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	api.handle(mux, "POST /tasks/{id}/reopen", func(w http.ResponseWriter, r *http.Request) {
		t := api.findTask(r.PathValue("id"))
		if t == nil {
			http.NotFound(w, r)
			return
		}
		t.IsCompleted = false
		w.WriteHeader(http.StatusNoContent)
	})
	api.handle(mux, "DELETE /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := todoist.ID(r.PathValue("id"))
		if api.findTask(id.String()) == nil {
			http.NotFound(w, r)
			return
		}
		gone := map[todoist.ID]bool{id: true}
		var tasks []*todoist.Task
		for _, t := range api.tasks {
			if gone[t.ID] || gone[t.ParentID] {
				gone[t.ID] = true
				continue
			}
			tasks = append(tasks, t)
		}
		api.tasks = tasks
		w.WriteHeader(http.StatusNoContent)
	})
	api.handle(mux, "GET /labels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, append([]*todoist.Label{}, api.labels...))
	})
	api.handle(mux, "POST /labels", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		l := &todoist.Label{ID: api.id(), Name: body.Name}
		api.labels = append(api.labels, l)
		writeJSON(w, l)
	})
	api.handle(mux, "DELETE /labels/{id}", func(w http.ResponseWriter, r *http.Request) {
		var labels []*todoist.Label
		for _, l := range api.labels {
			if l.ID != todoist.ID(r.PathValue("id")) {
				labels = append(labels, l)
			}
		}
		api.labels = labels
		w.WriteHeader(http.StatusNoContent)
	})
	api.handle(mux, "GET /comments", func(w http.ResponseWriter, r *http.Request) {
		comments := []*todoist.Comment{}
		for _, c := range api.comments {
			if c.TaskID == todoist.ID(r.URL.Query().Get("task_id")) {
				comments = append(comments, c)
			}
		}
		writeJSON(w, comments)
	})
	api.handle(mux, "POST /comments", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TaskID  todoist.ID `json:"task_id"`
			Content string     `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c := &todoist.Comment{
			ID:       api.id(),
			TaskID:   body.TaskID,
			Content:  body.Content,
			PostedAt: time.Now().UTC().Format(time.RFC3339),
		}
		api.comments = append(api.comments, c)
		writeJSON(w, c)
	})
	api.handle(mux, "DELETE /comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		var comments []*todoist.Comment
		for _, c := range api.comments {
			if c.ID != todoist.ID(r.PathValue("id")) {
				comments = append(comments, c)
			}
		}
		api.comments = comments
		w.WriteHeader(http.StatusNoContent)
	})
}

func (api *fakeAPI) applyTask(t *todoist.Task, body taskBody) {
	if body.Content != nil {
		t.Content = *body.Content
	}
	if body.Description != nil {
		t.Description = *body.Description
	}
	if body.Labels != nil {
		t.Labels = body.Labels
	}
	if body.Priority != nil {
		t.Priority = *body.Priority
	}
	switch {
	case body.DueString != nil:
		t.Due = &todoist.Due{String: *body.DueString, Date: "2030-01-01", IsRecurring: strings.HasPrefix(*body.DueString, "every")}
	case body.DueDate != nil:
		t.Due = &todoist.Due{String: *body.DueDate, Date: *body.DueDate}
	case body.DueDatetime != nil:
		t.Due = &todoist.Due{String: *body.DueDatetime, Date: (*body.DueDatetime)[:10], Datetime: *body.DueDatetime}
	}
}

func TestRequestsCarryTokenAndMutationsCarryRequestID(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()

	_, err := client.GetProjects(ctx)
	require.Nil(t, err)
	get := api.lastRequest()
	assert.Equal(t, "Bearer "+testToken, get.authorization)
	assert.Empty(t, get.requestID)

	_, err = client.AddProject(ctx, todoist.NewProjectPatch().WithName("Work"))
	require.Nil(t, err)
	post := api.lastRequest()
	assert.Equal(t, http.MethodPost, post.method)
	assert.NotEmpty(t, post.requestID)

	_, err = client.AddProject(ctx, todoist.NewProjectPatch().WithName("Home"))
	require.Nil(t, err)
	assert.NotEqual(t, post.requestID, api.lastRequest().requestID)
}

func TestProjectLifecycle(t *testing.T) {
	_, client := newFakeAPI(t)
	ctx := context.Background()

	projects, err := client.GetProjects(ctx)
	require.Nil(t, err)
	assert.Len(t, projects, 1)

	work, err := client.AddProject(ctx, todoist.NewProjectPatch().WithName("Work"))
	require.Nil(t, err)
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, []todoist.ID{"1", work.ID}, projectIDs(client.Store().Projects()))

	renamed, err := client.UpdateProject(ctx, work.ID, todoist.NewProjectPatch().WithName("Office"))
	require.Nil(t, err)
	assert.Equal(t, "Office", renamed.Name)
	local, ok := client.ProjectByID(work.ID)
	require.True(t, ok)
	assert.Equal(t, "Office", local.Name)

	_, err = client.SetFavorite(ctx, work.ID, true)
	require.Nil(t, err)
	assert.Equal(t, []todoist.ID{work.ID}, projectIDs(client.Favorites()))
	local, _ = client.ProjectByID(work.ID)
	assert.Equal(t, "Office", local.Name)

	_, err = client.SetFavorite(ctx, work.ID, false)
	require.Nil(t, err)
	assert.Empty(t, client.Favorites())

	require.Nil(t, client.DeleteProject(ctx, work.ID))
	_, ok = client.ProjectByID(work.ID)
	assert.False(t, ok)

	err = client.DeleteProject(ctx, work.ID)
	assert.True(t, errors.Is(err, todoist.ErrNotFound))
}

func TestSetFavoriteFetchesUnknownProject(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()

	p, err := client.SetFavorite(ctx, "1", true)
	require.Nil(t, err)
	assert.True(t, p.IsFavorite)
	assert.Equal(t, "Inbox", p.Name)
	assert.True(t, api.findProject("1").IsFavorite)

	_, err = client.SetFavorite(ctx, "404", true)
	assert.True(t, errors.Is(err, todoist.ErrNotFound))
}

func TestBlankNamesAreRejectedLocally(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()

	_, err := client.AddProject(ctx, todoist.NewProjectPatch().WithName("   "))
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))
	_, err = client.AddProject(ctx, todoist.NewProjectPatch())
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))
	_, err = client.UpdateProject(ctx, "1", todoist.NewProjectPatch().WithName(""))
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))
	_, err = client.AddTask(ctx, todoist.NewTaskPatch().WithDescription("no content"))
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))
	_, err = client.UpdateTask(ctx, "1", todoist.NewTaskPatch().WithContent("\t"))
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))
	_, err = client.AddComment(ctx, todoist.NewCommentPatch().WithTaskID("1"))
	assert.True(t, errors.Is(err, todoist.ErrEmptyName))

	assert.Equal(t, 0, api.requestCount())
}

func TestTaskLifecycle(t *testing.T) {
	_, client := newFakeAPI(t)
	ctx := context.Background()

	added, err := client.AddTask(ctx, todoist.NewTaskPatch().
		WithContent("Buy milk").
		WithDescription("semi-skimmed").
		WithProjectID("1").
		WithLabels("errand"))
	require.Nil(t, err)
	assert.Equal(t, todoist.ID("1"), added.ProjectID)

	tasks, err := client.GetTasks(ctx, todoist.TaskFilter{ProjectID: "1"})
	require.Nil(t, err)
	assert.Len(t, tasks, 1)
	assert.Len(t, client.Store().Tasks(), 1)

	updated, err := client.UpdateTask(ctx, added.ID, todoist.NewTaskPatch().WithContent("Buy oat milk"))
	require.Nil(t, err)
	assert.Equal(t, "Buy oat milk", updated.Content)
	assert.Equal(t, "semi-skimmed", updated.Description)
	local, ok := client.TaskByID(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Buy oat milk", local.Content)

	_, err = client.UpdateTask(ctx, added.ID, todoist.NewTaskPatch().WithProjectID("2"))
	assert.NotNil(t, err)

	require.Nil(t, client.CloseTask(ctx, added.ID))
	_, ok = client.TaskByID(added.ID)
	assert.False(t, ok)

	reopened, err := client.ReopenTask(ctx, added.ID)
	require.Nil(t, err)
	assert.False(t, reopened.IsCompleted)
	_, ok = client.TaskByID(added.ID)
	assert.True(t, ok)

	require.Nil(t, client.DeleteTask(ctx, added.ID))
	_, ok = client.TaskByID(added.ID)
	assert.False(t, ok)
	_, err = client.GetTask(ctx, added.ID)
	assert.True(t, errors.Is(err, todoist.ErrNotFound))
}

func TestGetTasksForProjectDropsStaleLocalTasks(t *testing.T) {
	_, client := newFakeAPI(t)
	ctx := context.Background()
	client.Store().AddTask(task(1, 1, "deleted elsewhere"))
	client.Store().AddTask(task(2, 7, "other project"))

	_, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("fresh").WithProjectID("1"))
	require.Nil(t, err)
	_, err = client.GetTasks(ctx, todoist.TaskFilter{ProjectID: "1"})
	require.Nil(t, err)

	_, ok := client.TaskByID("1")
	assert.False(t, ok)
	_, ok = client.TaskByID("2")
	assert.True(t, ok)
	assert.Len(t, client.SearchTasks().WithProjectID("1").Results(), 1)
}

func TestMoveTask(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	work, err := client.AddProject(ctx, todoist.NewProjectPatch().WithName("Work"))
	require.Nil(t, err)
	original, err := client.AddTask(ctx, todoist.NewTaskPatch().
		WithContent("Write report").
		WithDescription("quarterly").
		WithLabels("next").
		WithPriority(3).
		WithDueDate("2030-05-01"))
	require.Nil(t, err)

	moved, err := client.MoveTask(ctx, original.ID, work.ID)
	require.Nil(t, err)
	assert.NotEqual(t, original.ID, moved.ID)
	assert.Equal(t, work.ID, moved.ProjectID)
	assert.Equal(t, "Write report", moved.Content)
	assert.Equal(t, "quarterly", moved.Description)
	assert.Equal(t, []string{"next"}, moved.Labels)
	assert.Equal(t, 3, moved.Priority)
	require.NotNil(t, moved.Due)
	assert.Equal(t, "2030-05-01", moved.Due.Date)

	_, ok := client.TaskByID(original.ID)
	assert.False(t, ok)
	_, ok = client.TaskByID(moved.ID)
	assert.True(t, ok)
	assert.Nil(t, api.findTask(original.ID.String()))

	before := api.requestCount()
	same, err := client.MoveTask(ctx, moved.ID, work.ID)
	require.Nil(t, err)
	assert.Equal(t, moved.ID, same.ID)
	assert.Equal(t, before, api.requestCount())
}

func TestMoveTaskCarriesSubtasks(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	parent, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Plan trip"))
	require.Nil(t, err)
	child, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Book train").WithParentID(parent.ID))
	require.Nil(t, err)
	_, err = client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Pick seats").WithParentID(child.ID))
	require.Nil(t, err)

	moved, err := client.MoveTask(ctx, parent.ID, "77")
	require.Nil(t, err)

	require.Len(t, api.tasks, 3)
	for _, task := range api.tasks {
		assert.Equal(t, todoist.ID("77"), task.ProjectID)
	}
	movedChildren := client.Store().Subtasks(moved.ID)
	require.Len(t, movedChildren, 1)
	assert.Equal(t, "Book train", movedChildren[0].Content)
	grandchildren := client.Store().Subtasks(movedChildren[0].ID)
	require.Len(t, grandchildren, 1)
	assert.Equal(t, "Pick seats", grandchildren[0].Content)
	assert.Len(t, client.Store().Tasks(), 3)
	_, ok := client.TaskByID(child.ID)
	assert.False(t, ok)
}

func TestMoveTaskKeepsOriginalWhenSubtaskCopyFails(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	parent, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Plan trip"))
	require.Nil(t, err)
	_, err = client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Book train").WithParentID(parent.ID))
	require.Nil(t, err)

	api.failAfter("POST /tasks", 1, http.StatusInternalServerError)
	moved, err := client.MoveTask(ctx, parent.ID, "77")
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))
	require.NotNil(t, moved)
	assert.Equal(t, todoist.ID("77"), moved.ProjectID)

	assert.NotNil(t, api.findTask(parent.ID.String()))
	_, ok := client.TaskByID(parent.ID)
	assert.True(t, ok)
	assert.Len(t, client.Store().Subtasks(parent.ID), 1)
}

func TestMoveTaskKeepsOriginalWhenCopyFails(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	original, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Stay put"))
	require.Nil(t, err)

	api.fail("POST /tasks", http.StatusInternalServerError)
	_, err = client.MoveTask(ctx, original.ID, "1234")
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))

	_, ok := client.TaskByID(original.ID)
	assert.True(t, ok)
	assert.NotNil(t, api.findTask(original.ID.String()))
}

func TestMoveTaskReportsFailedDelete(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	original, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Twice"))
	require.Nil(t, err)

	api.fail("DELETE /tasks/{id}", http.StatusServiceUnavailable)
	moved, err := client.MoveTask(ctx, original.ID, "77")
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))
	require.NotNil(t, moved)
	_, ok := client.TaskByID(moved.ID)
	assert.True(t, ok)
	_, ok = client.TaskByID(original.ID)
	assert.True(t, ok)
}

func TestFailedMutationLeavesStoreAlone(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx := context.Background()
	_, err := client.GetProjects(ctx)
	require.Nil(t, err)

	api.fail("POST /projects/{id}", http.StatusBadRequest)
	_, err = client.UpdateProject(ctx, "1", todoist.NewProjectPatch().WithName("Renamed"))
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))
	p, _ := client.ProjectByID("1")
	assert.Equal(t, "Inbox", p.Name)

	api.fail("DELETE /projects/{id}", http.StatusInternalServerError)
	assert.NotNil(t, client.DeleteProject(ctx, "1"))
	_, ok := client.ProjectByID("1")
	assert.True(t, ok)
}

func TestPullReplacesAndThrottles(t *testing.T) {
	api, client := newFakeAPI(t, todoist.WithPullInterval(time.Hour))
	ctx := context.Background()
	client.Store().AddTask(task(1, 1, "gone"))
	api.tasks = append(api.tasks, task(2, 1, "remote"))
	api.labels = append(api.labels, &todoist.Label{ID: "9", Name: "next"})

	require.Nil(t, client.Pull(ctx))
	assert.Equal(t, []todoist.ID{"2"}, taskIDs(client.Store().Tasks()))
	assert.NotNil(t, client.LabelByName("next"))
	assert.Equal(t, 3, api.requestCount())

	require.Nil(t, client.Pull(ctx))
	assert.Equal(t, 3, api.requestCount())

	_, err := client.AddLabel(ctx, todoist.NewLabelPatch().WithName("waiting"))
	require.Nil(t, err)
	require.Nil(t, client.Pull(ctx))
	assert.Equal(t, 7, api.requestCount())

	require.Nil(t, client.ForcePull(ctx))
	assert.Equal(t, 10, api.requestCount())
}

func TestPullFailureKeepsMirror(t *testing.T) {
	api, client := newFakeAPI(t)
	client.Store().AddTask(task(1, 1, "kept"))
	api.fail("GET /labels", http.StatusBadGateway)

	err := client.ForcePull(context.Background())
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))
	assert.Equal(t, []todoist.ID{"1"}, taskIDs(client.Store().Tasks()))
}

func TestLabelsAndComments(t *testing.T) {
	_, client := newFakeAPI(t)
	ctx := context.Background()

	label, err := client.AddLabel(ctx, todoist.NewLabelPatch().WithName("next"))
	require.Nil(t, err)
	labels, err := client.GetLabels(ctx)
	require.Nil(t, err)
	assert.Len(t, labels, 1)
	require.Nil(t, client.DeleteLabel(ctx, label.ID))
	assert.Nil(t, client.LabelByName("next"))

	task, err := client.AddTask(ctx, todoist.NewTaskPatch().WithContent("Call mum"))
	require.Nil(t, err)
	comment, err := client.AddComment(ctx, todoist.NewCommentPatch().WithTaskID(task.ID).WithContent("after 6pm"))
	require.Nil(t, err)
	assert.False(t, comment.Time().IsZero())

	client.Store().RemoveComment(comment.ID)
	comments, err := client.GetComments(ctx, task.ID)
	require.Nil(t, err)
	require.Len(t, comments, 1)
	assert.Len(t, client.SearchComments().WithTaskID(task.ID).Results(), 1)

	require.Nil(t, client.DeleteComment(ctx, comment.ID))
	_, ok := client.CommentByID(comment.ID)
	assert.False(t, ok)
}

func TestUnauthorizedIsUnhandledStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	}))
	defer ts.Close()
	client, err := todoist.NewClient("wrong", todoist.WithEndpoint(ts.URL), todoist.WithRateLimit(0, 0))
	require.Nil(t, err)
	_, err = client.GetProjects(context.Background())
	assert.True(t, errors.Is(err, todoist.ErrStatusCode))
}

func TestWireLog(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "wire.log")
	_, client := newFakeAPI(t, todoist.WithWireLog(pathname))
	_, err := client.AddProject(context.Background(), todoist.NewProjectPatch().WithName("Logged"))
	require.Nil(t, err)

	b, err := os.ReadFile(pathname)
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	var request, response map[string]interface{}
	require.Nil(t, json.Unmarshal([]byte(lines[0]), &request))
	require.Nil(t, json.Unmarshal([]byte(lines[1]), &response))
	assert.Equal(t, "request", request["type"])
	assert.Equal(t, `{"name":"Logged"}`, request["body"])
	assert.Equal(t, "response", response["type"])
	assert.EqualValues(t, 200, response["status"])
}

func TestContextCancellation(t *testing.T) {
	api, client := newFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetProjects(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, api.requestCount())
}

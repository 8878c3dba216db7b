package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"9fans.net/go/acme"
	todoist "github.com/nicolagi/todoist-rest"
	log "github.com/sirupsen/logrus"
)

type windowMode int

const (
	modeTask        windowMode = iota // /todo/tasks/$id
	modeNewTask                       // /todo/tasks/new
	modeProject                       // /todo/projects/$id
	modeNewProject                    // /todo/projects/new
	modeAllProjects                   // /todo/projects/all
	modeSearch                        // /todo/search/$expr
	modeCalendar                      // /todo/calendar
)

func (mode windowMode) String() string {
	switch mode {
	case modeTask:
		return "task"
	case modeNewTask:
		return "newTask"
	case modeProject:
		return "project"
	case modeNewProject:
		return "newProject"
	case modeAllProjects:
		return "allProjects"
	case modeSearch:
		return "search"
	case modeCalendar:
		return "calendar"
	default:
		log.WithField("mode", int(mode)).Error("Missing mode string, returning as number")
		return fmt.Sprintf("%d", int(mode))
	}
}

var all struct {
	sync.Mutex
	m map[*acme.Win]*window
}

type window struct {
	*acme.Win

	mode windowMode

	projectID todoist.ID // For modeProject, modeTask, modeNewTask
	taskID    todoist.ID // For modeTask
	expr      string     // For modeSearch

	// If false, sort by task order, as in the web app.  Only used for project mode and search mode.
	sortAlphabetically bool
}

// resetTag is used when a new window is created, or when transitioning a window from new task (project) mode to
// task (project) mode.
func (w *window) resetTag() {
	var tag string
	switch w.mode {
	case modeTask:
		tag = " Projects Calendar New Get Put PutDel Complete Move Zap "
	case modeNewTask:
		tag = " Projects Calendar Put PutDel "
	case modeProject:
		tag = " Projects Calendar New Get Put PutDel Sort Fav Unfav Zap "
	case modeNewProject:
		tag = " Projects Calendar Put PutDel "
	case modeAllProjects:
		tag = " Calendar New Get Put PutDel Search Fav Unfav Zap "
	case modeSearch:
		tag = " Projects Calendar Get Sort Search Zap "
	case modeCalendar:
		tag = " Projects Get Search Zap "
	}
	_ = w.Ctl("cleartag")
	_ = w.Fprintf("tag", tag)
}

// exit is called after the window's event loop is over, i.e., the window has been closed in acme.  If it's the
// last window, we try to save the data before terminating the process.
func (w *window) exit() {
	all.Lock()
	defer all.Unlock()
	if all.m[w.Win] == w {
		delete(all.m, w.Win)
	}
	if len(all.m) == 0 {
		if err := client.Dump(stateDir); err != nil {
			log.WithField("cause", err).Warning("Could not dump data locally")
		}
		os.Exit(0)
	}
}

// newWindow creates a window in acme without a specific purpose, and registers it in the global map of windows.
func newWindow(pathname string) *window {
	all.Lock()
	defer all.Unlock()
	if all.m == nil {
		all.m = make(map[*acme.Win]*window)
	}

	logEntry := log.WithField("path", pathname)
	aw, err := acme.New()
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not create acme window")
		time.Sleep(10 * time.Millisecond)
		aw, err = acme.New()
		if err != nil {
			logEntry.WithField("cause", err).Fatal("Could not create acme window again")
		}
	}
	aw.SetErrorPrefix(pathname)
	_ = aw.Name(pathname)

	w := &window{Win: aw}
	all.m[w.Win] = w
	return w
}

func newAllProjectsWindow() {
	title := "/todo/projects/all"
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	w.mode = modeAllProjects
	w.resetTag()
	go w.load()
	go w.loop()
}

func newSearchWindow(expr string) {
	title := "/todo/search/" + expr
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	w.mode = modeSearch
	w.expr = expr
	w.resetTag()
	go w.load()
	go w.loop()
}

func newProjectWindow(id todoist.ID) {
	var title string
	if id != "" {
		title = "/todo/projects/" + id.String()
	} else {
		title = "/todo/projects/new"
	}
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	if id != "" {
		w.projectID = id
		w.mode = modeProject
	} else {
		w.mode = modeNewProject
	}
	w.resetTag()
	go w.load()
	go w.loop()
}

func newTaskWindow(taskID, projectID todoist.ID) {
	var title string
	if taskID != "" {
		title = "/todo/tasks/" + taskID.String()
	} else {
		title = "/todo/tasks/new"
	}
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	if taskID != "" {
		w.mode = modeTask
		w.taskID = taskID
	} else {
		w.mode = modeNewTask
	}
	w.projectID = projectID
	w.resetTag()
	go w.load()
	go w.loop()
}

func newCalendarWindow() {
	title := "/todo/calendar"
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	w.mode = modeCalendar
	w.resetTag()
	go w.load()
	go w.loop()
}

// Look is invoked via button-3 click in acme. We need to see if we can open other windows from the current
// one, e.g., if text contains a task id or a project id. Should return true if we were able to handle
// the action, otherwise return false to defer to other handlers (to, e.g., open a URL in the browser).
func (w *window) Look(text string) bool {
	id := todoist.ID(strings.TrimSpace(text))
	switch w.mode {
	case modeAllProjects:
		if _, ok := client.ProjectByID(id); ok {
			newProjectWindow(id)
			return true
		}
	case modeTask:
		if project, ok := findProject(text); ok {
			newProjectWindow(project.ID)
			return true
		}
	case modeProject, modeSearch, modeCalendar:
		if task, ok := client.TaskByID(id); ok {
			newTaskWindow(id, task.ProjectID)
			return true
		}
	}
	return false
}

// load refreshes the local data as needed by the window, then renders it. Failing to refresh is reported but
// the local data is rendered regardless.
func (w *window) load() {
	ctx := context.Background()
	if err := client.Pull(ctx); err != nil {
		w.Errf("load: pull: %v", err)
	}
	switch w.mode {
	case modeProject:
		if _, err := client.GetTasks(ctx, todoist.TaskFilter{ProjectID: w.projectID}); err != nil {
			w.Errf("load: tasks: %v", err)
		}
	case modeTask:
		if _, err := client.GetComments(ctx, w.taskID); err != nil {
			w.Errf("load: comments: %v", err)
		}
	}
	var buf bytes.Buffer
	var err error
	switch w.mode {
	case modeNewTask:
		err = printNewTaskForProject(&buf, w.projectID)
	case modeNewProject:
		// Leave buffer empty.
	case modeTask:
		err = printTaskByID(&buf, w.taskID)
	case modeProject:
		err = printProjectByID(&buf, w.projectID)
	case modeSearch:
		err = printSearch(&buf, w.expr)
	case modeAllProjects:
		err = printAllProjects(&buf)
	case modeCalendar:
		err = printCalendar(&buf)
	}
	w.Clear()
	if err != nil {
		_, _ = w.Write("body", []byte(err.Error()))
	} else if w.mode != modeProject && w.mode != modeSearch && w.mode != modeCalendar {
		_, _ = w.Write("body", buf.Bytes())
		_ = w.Ctl("clean")
	} else {
		w.PrintTabbed(buf.String())
		_ = w.Ctl("clean")
	}

	if err == nil && (w.mode == modeTask || w.mode == modeNewTask) {
		_ = w.Addr("#9") // Past "Content: "
	} else {
		_ = w.Addr("0")
	}
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

func (w *window) sort() {
	if err := w.Addr("0/^[0-9]/,"); err != nil {
		w.Err("nothing to sort")
	}
	var less func(string, string) bool
	if !w.sortAlphabetically {
		less = func(a, b string) bool { return taskOrder(a) < taskOrder(b) }
	} else {
		less = func(a, b string) bool { return skipField(a) < skipField(b) }
	}
	if err := w.Sort(less); err != nil {
		w.Errf("Could not sort: %v", err.Error())
	}
	_ = w.Addr("0")
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

// taskOrder returns the order of the task whose id starts the line, or zero if unknown.
func taskOrder(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	if task, ok := client.TaskByID(todoist.ID(fields[0])); ok {
		return task.Order
	}
	return 0
}

func skipField(s string) string {
	i := strings.Index(s, "\t")
	if i < 0 {
		return s
	}
	for i < len(s) && s[i] == '\t' {
		i++
	}
	return s[i:]
}

// Execute is triggered by button-2 click in acme.
func (w *window) Execute(cmd string) bool {
	ctx := context.Background()
	if strings.HasPrefix(cmd, "Search ") {
		expr := strings.TrimSpace(strings.TrimPrefix(cmd, "Search "))
		newSearchWindow(expr)
		return true
	}
	if cmd == "Zap" || cmd == "Fav" || cmd == "Unfav" { // Try to infer argument
		switch w.mode {
		case modeProject:
			cmd += " " + w.projectID.String()
		case modeTask:
			cmd += " " + w.taskID.String()
		}
	}
	if strings.HasPrefix(cmd, "Fav ") || strings.HasPrefix(cmd, "Unfav ") {
		fields := strings.Fields(cmd)
		id := todoist.ID(fields[len(fields)-1])
		if _, ok := client.ProjectByID(id); !ok {
			w.Errf("Not a project: %s", id)
			return true
		}
		if _, err := client.SetFavorite(ctx, id, fields[0] == "Fav"); err != nil {
			w.Errf("Could not update favorite status: %v", err)
		} else {
			onAllProjectsPut()
		}
		return true
	}
	if strings.HasPrefix(cmd, "Move ") {
		if w.mode != modeTask {
			w.Errf("Move only works in task mode, mode is %v", w.mode)
			return true
		}
		w.move(ctx, strings.TrimSpace(strings.TrimPrefix(cmd, "Move ")))
		return true
	}
	if strings.HasPrefix(cmd, "Zap ") {
		what := strings.TrimSpace(strings.TrimPrefix(cmd, "Zap "))
		if label := client.LabelByName(what); label != nil {
			if err := client.DeleteLabel(ctx, label.ID); err != nil {
				w.Errf("Could not delete label %s: %v", label.Name, err)
			}
			return true
		}
		id := todoist.ID(what)
		if comment, ok := client.CommentByID(id); ok {
			if err := client.DeleteComment(ctx, id); err != nil {
				w.Errf("Could not delete comment %s: %v", id, err)
			} else {
				onCommentZapped(comment.TaskID)
			}
			return true
		} else if task, ok := client.TaskByID(id); ok {
			if err := client.DeleteTask(ctx, id); err != nil {
				w.Errf("Could not delete task %s: %v", id, err)
			} else {
				onTaskZapped(id, task.ProjectID)
			}
			return true
		} else if project, ok := client.ProjectByID(id); ok {
			if project.IsInboxProject {
				w.Errf("The inbox can not be deleted")
			} else if err := client.DeleteProject(ctx, id); err != nil {
				w.Errf("Could not delete project %s: %v", project.Name, err)
			} else {
				onProjectZapped(id)
			}
			return true
		}
		return false
	}
	switch cmd {
	case "Projects":
		newAllProjectsWindow()
		return true
	case "Calendar":
		newCalendarWindow()
		return true
	case "Get":
		w.load()
		return true
	case "Put", "PutDel":
		w.put(ctx, cmd == "PutDel")
		return true
	case "Del":
		_ = w.Del(false)
		return true
	case "New":
		if w.mode == modeProject || w.mode == modeTask {
			newTaskWindow("", w.projectID)
		} else if w.mode == modeAllProjects {
			newProjectWindow("")
		} else {
			w.Errf("Trying to create a new entity in a window with mode: %v", w.mode)
		}
		return true
	case "Sort":
		if w.mode == modeProject || w.mode == modeSearch {
			w.sortAlphabetically = !w.sortAlphabetically
			w.sort()
		} else {
			w.Errf("Window mode does not allow sorting: %v", w.mode)
		}
		return true
	case "Complete":
		if w.mode == modeTask {
			if task, ok := client.TaskByID(w.taskID); ok {
				if err := client.CloseTask(ctx, w.taskID); err != nil {
					w.Errf("Could not complete task: %v", err)
				} else {
					// Same reaction to complete and delete.
					onTaskZapped(task.ID, task.ProjectID)
				}
			} else {
				w.Errf("Task not found: %s", w.taskID)
			}
		} else {
			w.Errf("Complete only works in task mode, mode is %v", w.mode)
		}
		return true
	default:
		return false
	}
}

func (w *window) put(ctx context.Context, del bool) {
	switch w.mode {
	case modeNewProject:
		project, err := func() (*todoist.Project, error) {
			name, err := w.ReadAll("body")
			if err != nil {
				return nil, err
			}
			return client.AddProject(ctx, todoist.NewProjectPatch().WithName(strings.TrimSpace(string(name))))
		}()
		if errors.Is(err, todoist.ErrEmptyName) {
			w.Err("Project name cannot be empty.")
			return
		}
		if err != nil {
			w.Errf("Failed adding project: %v", err)
			return
		}
		_ = w.Name("/todo/projects/%s", project.ID)
		w.mode = modeProject
		w.projectID = project.ID
		_ = w.Ctl("clean")
		w.resetTag()
		if del {
			_ = w.Del(true)
		}
		onProjectPut()
	case modeNewTask:
		form, err := w.readTaskForm(true)
		if err != nil {
			w.Errf("Failed parsing edited window: %v", err)
			return
		}
		projectID := w.projectID
		if form.project != nil {
			projectID = form.project.ID
		}
		task, err := client.AddTask(ctx, form.patch.WithProjectID(projectID))
		if errors.Is(err, todoist.ErrEmptyName) {
			w.Err("Task name cannot be empty.")
			return
		}
		if err != nil {
			w.Errf("Failed adding task: %v", err)
			return
		}
		if !form.comment.Empty() {
			if _, err := client.AddComment(ctx, form.comment.WithTaskID(task.ID)); err != nil {
				w.Errf("Task added, but not its comment: %v", err)
			}
		}
		_ = w.Name("/todo/tasks/%s", task.ID)
		w.mode = modeTask
		w.taskID = task.ID
		w.projectID = task.ProjectID
		w.resetTag()
		if del {
			_ = w.Del(true)
		}
		onTaskPut(task.ID, task.ProjectID)
	case modeAllProjects:
		if err := w.renameProjects(ctx); errors.Is(err, todoist.ErrEmptyName) {
			w.Err("Project name cannot be empty.")
			return
		} else if err != nil {
			w.Errf("Could not update project names: %v", err)
			return
		}
		_ = w.Ctl("clean")
		if del {
			_ = w.Del(true)
		}
		onAllProjectsPut()
	case modeProject:
		if err := w.moveListedTasks(ctx); err != nil {
			w.Errf("Could not move tasks into project: %v", err)
			return
		}
		_ = w.Ctl("clean")
		if del {
			_ = w.Del(true)
		}
		onProjectPut()
	case modeTask:
		form, err := w.readTaskForm(false)
		if err != nil {
			w.Errf("Failed parsing edited window: %v", err)
			return
		}
		if !form.patch.Empty() {
			if _, err := client.UpdateTask(ctx, w.taskID, form.patch); errors.Is(err, todoist.ErrEmptyName) {
				w.Err("Task name cannot be empty.")
				return
			} else if err != nil {
				w.Errf("Could not update task: %v", err)
				return
			}
		}
		if !form.comment.Empty() {
			if _, err := client.AddComment(ctx, form.comment.WithTaskID(w.taskID)); err != nil {
				w.Errf("Could not add comment: %v", err)
			}
		}
		if form.project != nil && form.project.ID != w.projectID {
			w.move(ctx, form.project.Name)
			return
		}
		if del {
			_ = w.Del(true)
		}
		onTaskPut(w.taskID, w.projectID)
	default:
		w.Errf("Put forbidden for this window mode: %v", w.mode)
	}
}

// renameProjects reads the sidebar and renames the projects whose name was edited. A project is listed twice if
// it's a favorite; whichever line was edited wins.
func (w *window) renameProjects(ctx context.Context) error {
	data, err := w.ReadAll("body")
	if err != nil {
		return err
	}
	order, renames, err := sidebarRenames(string(data))
	if err != nil {
		return err
	}
	for _, id := range order {
		if _, err := client.UpdateProject(ctx, id, todoist.NewProjectPatch().WithName(renames[id])); err != nil {
			return err
		}
	}
	return nil
}

// sidebarRenames returns, in sidebar order, the known projects whose name differs from the one on their line. A
// line reduced to a known project id yields ErrEmptyName, before any project is renamed.
func sidebarRenames(body string) ([]todoist.ID, map[todoist.ID]string, error) {
	renames := make(map[todoist.ID]string)
	var order []todoist.ID
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		id := todoist.ID(fields[0])
		p, ok := client.ProjectByID(id)
		if !ok {
			continue
		}
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("project %s: %w", id, todoist.ErrEmptyName)
		}
		name := strings.Join(fields[1:], " ")
		if name == p.Name {
			continue
		}
		if _, seen := renames[id]; !seen {
			order = append(order, id)
		}
		renames[id] = name
	}
	return order, renames, nil
}

// moveListedTasks moves into the window's project any task listed in the body that belongs to another project,
// e.g., because its line was copied over from another window.
func (w *window) moveListedTasks(ctx context.Context) error {
	data, err := w.ReadAll("body")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if _, err := strconv.ParseUint(fields[0], 10, 64); err != nil {
			log.WithField("line", line).Warning("Ignoring line that does not start with a number")
			continue
		}
		task, ok := client.TaskByID(todoist.ID(fields[0]))
		if !ok {
			log.WithField("line", line).Warning("Ignoring line that refers to an unknown task")
			continue
		}
		if task.ProjectID != w.projectID {
			if _, err := client.MoveTask(ctx, task.ID, w.projectID); err != nil {
				return err
			}
			onTaskZapped(task.ID, task.ProjectID)
		}
	}
	return nil
}

// move moves the window's task to the named project. The task gets a new id, which the window follows.
func (w *window) move(ctx context.Context, projectName string) {
	project, ok := findProject(projectName)
	if !ok {
		w.Errf("No project named %q", projectName)
		return
	}
	oldID, oldProjectID := w.taskID, w.projectID
	moved, err := client.MoveTask(ctx, w.taskID, project.ID)
	if err != nil {
		w.Errf("Could not move task: %v", err)
		if moved == nil {
			return
		}
	}
	all.Lock()
	delete(all.m, w.Win)
	all.Unlock()
	onTaskZapped(oldID, oldProjectID)
	all.Lock()
	all.m[w.Win] = w
	all.Unlock()
	_ = w.Name("/todo/tasks/%s", moved.ID)
	w.taskID = moved.ID
	w.projectID = moved.ProjectID
	onTaskPut(moved.ID, moved.ProjectID)
}

// taskForm is what can be read out of a task window.
type taskForm struct {
	patch   *todoist.TaskPatch
	comment *todoist.CommentPatch
	project *todoist.Project // Non-nil if the Project: line names a known project.
}

// readTaskForm reads up the body and parses it into a task patch. When editing an existing task, lines whose
// value did not change are left out of the patch.
func (w *window) readTaskForm(isNew bool) (*taskForm, error) {
	data, err := w.ReadAll("body")
	if err != nil {
		return nil, err
	}
	var current *todoist.Task
	if !isNew {
		var ok bool
		if current, ok = client.TaskByID(w.taskID); !ok {
			return nil, fmt.Errorf("task %s: %w", w.taskID, todoist.ErrNotFound)
		}
	}
	form := &taskForm{
		patch:   todoist.NewTaskPatch(),
		comment: todoist.NewCommentPatch(),
	}
	value := func(line, prefix string) (string, bool) {
		if !strings.HasPrefix(line, prefix) {
			return "", false
		}
		return strings.TrimSpace(line[len(prefix):]), true
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := value(line, "Content:"); ok {
			if isNew || v != current.Content {
				form.patch.WithContent(v)
			}
		} else if v, ok := value(line, "Description:"); ok {
			if isNew || v != oneLine(current.Description) {
				form.patch.WithDescription(v)
			}
		} else if v, ok := value(line, "Project:"); ok {
			if v != "" {
				project, found := findProject(v)
				if !found {
					return nil, fmt.Errorf("project %q: %w", v, todoist.ErrNotFound)
				}
				form.project = project
			}
		} else if v, ok := value(line, "Labels:"); ok {
			labels := strings.Fields(v)
			if isNew && len(labels) == 0 {
				continue
			}
			if !isNew && sameLabels(labels, current.Labels) {
				continue
			}
			form.patch.WithLabels(labels...)
		} else if v, ok := value(line, "Priority:"); ok {
			if v == "" {
				continue
			}
			priority, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("priority %q: %w", v, err)
			}
			if isNew || priority != current.Priority {
				form.patch.WithPriority(priority)
			}
		} else if v, ok := value(line, "Due:"); ok {
			// Anything Todoist understands, e.g., "2019-08-03", "tomorrow at 3pm", or "every monday".
			if v != "" && (isNew || current.Due == nil || v != dueText(current.Due)) {
				form.patch.WithDueString(v)
			}
		} else if v, ok := value(line, "Comment:"); ok {
			if v != "" {
				form.comment.WithContent(v)
			}
		}
	}
	return form, nil
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool)
	for _, label := range b {
		seen[label] = true
	}
	for _, label := range a {
		if !seen[label] {
			return false
		}
	}
	return true
}

func (w *window) loop() {
	defer w.exit()
	w.EventLoop(w)
}

func onAllProjectsPut() {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		switch w.mode {
		case modeAllProjects, modeTask:
			// Task windows show the project name.
			w.load()
		}
	}
}

func onTaskPut(taskID, projectID todoist.ID) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		switch w.mode {
		case modeSearch, modeCalendar:
			w.load()
		case modeProject:
			if w.projectID == projectID {
				w.load()
			}
		case modeTask:
			if w.taskID == taskID {
				_ = w.Ctl("clean")
				w.load()
			}
		}
	}
}

func onProjectPut() {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		switch w.mode {
		case modeAllProjects:
			w.load()
		case modeProject:
			// Only actually needed if a task has been moved away from the window's project to the
			// project that was put.
			w.load()
		}
	}
}

func onProjectZapped(projectID todoist.ID) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		switch w.mode {
		case modeAllProjects, modeSearch, modeCalendar:
			w.load()
		case modeTask, modeNewTask, modeProject:
			if w.projectID == projectID {
				_ = w.Del(true)
			}
		}
	}
}

func onTaskZapped(taskID, projectID todoist.ID) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		if w.mode == modeSearch || w.mode == modeCalendar {
			w.load()
		}
		if w.mode == modeProject && w.projectID == projectID {
			w.load()
		}
		if w.mode == modeTask && w.taskID == taskID {
			_ = w.Del(true)
		}
	}
}

func onCommentZapped(taskID todoist.ID) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		if w.mode == modeTask && w.taskID == taskID {
			w.load()
		}
	}
}

// onStateReloaded redraws every window after another program rewrote the saved state.
func onStateReloaded() {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		if w.mode == modeNewTask || w.mode == modeNewProject {
			continue
		}
		w.load()
	}
}

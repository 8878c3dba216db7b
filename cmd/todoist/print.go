package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	todoist "github.com/nicolagi/todoist-rest"
)

// printAllProjects lays out the sidebar: favorites first, then all projects, one per line, id first.
func printAllProjects(w io.Writer) error {
	favorites := client.Favorites()
	sort.Stable(projectsByOrder(favorites))
	all := client.SearchProjects().Results()
	sort.Stable(projectsByOrder(all))
	_, _ = fmt.Fprint(w, "Favorites\n")
	for _, p := range favorites {
		_, _ = fmt.Fprintf(w, "%v\t%v\n", p.ID, p.Name)
	}
	_, _ = fmt.Fprint(w, "\nAll projects\n")
	for _, p := range all {
		_, _ = fmt.Fprintf(w, "%v\t%v\n", p.ID, p.Name)
	}
	return nil
}

func printProjectByID(w io.Writer, id todoist.ID) error {
	if _, ok := client.ProjectByID(id); !ok {
		return fmt.Errorf("print project: %s: %w", id, todoist.ErrNotFound)
	}
	tasks := client.SearchTasks().WithProjectID(id).WithCompleted(false).Results()
	sort.Stable(tasksByOrder(tasks))
	return printTasks(w, tasks)
}

func printSearch(w io.Writer, expr string) error {
	search := client.SearchTasks().WithCompleted(false)
	for _, term := range strings.Split(expr, ":") {
		if term = strings.TrimSpace(term); term != "" {
			addSearchTerm(search, term)
		}
	}
	return printTasks(w, search.Results())
}

func printCalendar(w io.Writer) error {
	tasks := client.SearchTasks().WithCompleted(false).WithDue().Results()
	sort.Stable(tasksByDue(tasks))
	return printTasks(w, tasks)
}

func relativeDurationFormat(d time.Duration) string {
	var buf bytes.Buffer
	t := d / (24 * time.Hour)
	if t != 0 {
		fmt.Fprintf(&buf, "%dd", t)
	}
	d -= t * 24 * time.Hour
	t = d / time.Hour
	if t != 0 {
		fmt.Fprintf(&buf, "%dh", t)
	}
	d -= t * time.Hour
	if buf.Len() == 0 {
		t = d / time.Minute
		if t != 0 {
			fmt.Fprintf(&buf, "%dm", t)
		}
	}
	return buf.String()
}

func printTasks(w io.Writer, tasks []*todoist.Task) error {
	for _, t := range tasks {
		labels := append([]string(nil), t.Labels...)
		sort.Strings(labels)
		dueIn := ""
		if t.Due != nil {
			dueIn = relativeDurationFormat(time.Until(t.Due.Time()))
		}
		_, _ = fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", t.ID, strings.Join(labels, " "), dueIn, t.Content)
	}
	return nil
}

func printTaskByID(w io.Writer, id todoist.ID) error {
	task, ok := client.TaskByID(id)
	if !ok {
		return fmt.Errorf("print task: %s: %w", id, todoist.ErrNotFound)
	}
	return printTask(w, task)
}

func printTask(w io.Writer, task *todoist.Task) error {
	projectName, err := getProjectName(task.ProjectID)
	if err != nil {
		return fmt.Errorf("print task: %s: %w", task.ID, err)
	}
	labels := append([]string(nil), task.Labels...)
	sort.Strings(labels)
	_, _ = fmt.Fprintf(w, "Content: %s\n", task.Content)
	_, _ = fmt.Fprintf(w, "Description: %s\n", oneLine(task.Description))
	_, _ = fmt.Fprintf(w, "Project: %s\n", projectName)
	_, _ = fmt.Fprintf(w, "Labels: %s\n", strings.Join(labels, " "))
	_, _ = fmt.Fprintf(w, "Priority: %d\n", task.Priority)
	if task.Due != nil {
		_, _ = fmt.Fprintf(w, "Due: %s\n", dueText(task.Due))
	} else {
		_, _ = fmt.Fprint(w, "Due: \n")
	}
	_, _ = fmt.Fprint(w, "Comment: \n")
	_, _ = fmt.Fprintf(w, "Available labels: %s\n", strings.Join(availableLabels(), " "))

	comments := client.SearchComments().WithTaskID(task.ID).Results()
	sort.Sort(commentsByPosted(comments))
	for _, comment := range comments {
		_, _ = fmt.Fprintf(w, "\n%s @ %s\n\n%s\n", comment.ID, comment.PostedAt, comment.Content)
	}

	return nil
}

func printNewTaskForProject(w io.Writer, projectID todoist.ID) error {
	project, err := getProjectName(projectID)
	if err != nil {
		return fmt.Errorf("print new task for project %s: %w", projectID, err)
	}
	_, _ = fmt.Fprintf(w, `Content: 
Description: 
Project: %s
Labels: 
Priority: 1
Due: 
Comment: 
Available labels: %s
`, project, strings.Join(availableLabels(), " "))
	return nil
}

// dueText shows recurring due dates the way they were entered, since that's what one would edit, and other due
// dates in the form they can be entered back.
func dueText(due *todoist.Due) string {
	switch {
	case due.IsRecurring:
		return due.String
	case due.Datetime != "":
		return due.Datetime
	default:
		return due.Date
	}
}

// oneLine keeps a multi-line description on the Description: line, so it can be parsed back.
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// availableLabels lists favorite label names first, then the others, each group sorted.
func availableLabels() []string {
	var names []string
	for _, favorite := range []bool{true, false} {
		var group []string
		for _, label := range client.SearchLabels().WithFavorite(favorite).Results() {
			group = append(group, label.Name)
		}
		sort.Strings(group)
		names = append(names, group...)
	}
	return names
}

func getProjectName(id todoist.ID) (string, error) {
	p, ok := client.ProjectByID(id)
	if !ok {
		return "", fmt.Errorf("project %s: %w", id, todoist.ErrNotFound)
	}
	return p.Name, nil
}

// findProject looks up a project by exact name first, then by substring.
func findProject(name string) (*todoist.Project, bool) {
	if projects := client.SearchProjects().WithExactName(name).Results(); len(projects) != 0 {
		return projects[0], true
	}
	if projects := client.SearchProjects().WithName(name).Results(); len(projects) != 0 {
		return projects[0], true
	}
	return nil, false
}

func addSearchTerm(s *todoist.TaskScan, term string) {
	switch term[0] {
	case '-':
		if len(term) == 1 {
			s.WithContent(term)
			return
		}
		addSearchTerm(s, term[1:])
		s.Not()
	case '@':
		s.WithLabel(term[1:])
	case '#':
		var pids []todoist.ID
		for _, p := range client.SearchProjects().WithName(term[1:]).Results() {
			pids = append(pids, p.ID)
		}
		s.WithProjectID(pids...)
	default:
		s.WithContent(term)
	}
}

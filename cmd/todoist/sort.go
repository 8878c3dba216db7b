package main

import todoist "github.com/nicolagi/todoist-rest"

type tasksByDue []*todoist.Task

func (tasks tasksByDue) Len() int {
	return len(tasks)
}

func (tasks tasksByDue) Swap(i, j int) {
	tasks[i], tasks[j] = tasks[j], tasks[i]
}

func (tasks tasksByDue) Less(i, j int) bool {
	return tasks[i].Due.Time().Before(tasks[j].Due.Time())
}

type commentsByPosted []*todoist.Comment

func (comments commentsByPosted) Len() int {
	return len(comments)
}

func (comments commentsByPosted) Swap(i, j int) {
	comments[i], comments[j] = comments[j], comments[i]
}

func (comments commentsByPosted) Less(i, j int) bool {
	return comments[i].Time().Before(comments[j].Time())
}

type tasksByOrder []*todoist.Task

func (tasks tasksByOrder) Len() int {
	return len(tasks)
}

func (tasks tasksByOrder) Swap(i, j int) {
	tasks[i], tasks[j] = tasks[j], tasks[i]
}

func (tasks tasksByOrder) Less(i, j int) bool {
	return tasks[i].Order < tasks[j].Order
}

type projectsByOrder []*todoist.Project

func (projects projectsByOrder) Len() int {
	return len(projects)
}

func (projects projectsByOrder) Swap(i, j int) {
	projects[i], projects[j] = projects[j], projects[i]
}

func (projects projectsByOrder) Less(i, j int) bool {
	return projects[i].Order < projects[j].Order
}

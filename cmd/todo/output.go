package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	todoist "github.com/nicolagi/todoist-rest"
	"gopkg.in/yaml.v3"
)

var (
	idColor        = color.New(color.Faint)
	favoriteColor  = color.New(color.FgYellow, color.Bold)
	labelColor     = color.New(color.FgCyan)
	dueColor       = color.New(color.FgMagenta)
	urgentColor    = color.New(color.FgRed)
	successColor   = color.New(color.FgGreen)
	errorColor     = color.New(color.FgRed)
	priorityColors = map[int]*color.Color{
		2: color.New(color.FgBlue),
		3: color.New(color.FgYellow),
		4: urgentColor,
	}
)

func disableColor() {
	color.NoColor = true
}

func printError(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	if outputFmt != "text" {
		return
	}
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// render writes v as JSON or YAML according to the output flag, or calls text for the text format. YAML goes
// through JSON first so that both formats use the API field names.
func render(w io.Writer, v interface{}, text func(io.Writer)) error {
	switch outputFmt {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case "yaml":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		text(w)
		return nil
	}
}

func writeProjects(w io.Writer, projects []*todoist.Project) {
	for _, p := range projects {
		star := " "
		if p.IsFavorite {
			star = favoriteColor.Sprint("★")
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s\n", star, idColor.Sprint(p.ID), p.Name)
	}
}

func writeTasks(w io.Writer, tasks []*todoist.Task) {
	for _, t := range tasks {
		var extra []string
		for _, label := range t.Labels {
			extra = append(extra, labelColor.Sprint("@"+label))
		}
		if t.Due != nil {
			due := t.Due.Date
			if t.Due.String != "" {
				due = t.Due.String
			}
			extra = append(extra, dueColor.Sprint(due))
		}
		content := t.Content
		if c, ok := priorityColors[t.Priority]; ok {
			content = c.Sprint(content)
		}
		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s", check, idColor.Sprint(t.ID), content)
		if len(extra) != 0 {
			_, _ = fmt.Fprintf(w, "\t%s", strings.Join(extra, " "))
		}
		_, _ = fmt.Fprintln(w)
		if t.Description != "" {
			for _, line := range strings.Split(t.Description, "\n") {
				_, _ = fmt.Fprintf(w, "\t\t%s\n", line)
			}
		}
	}
}

func writeLabels(w io.Writer, labels []*todoist.Label) {
	for _, l := range labels {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", idColor.Sprint(l.ID), labelColor.Sprint(l.Name))
	}
}

func writeComments(w io.Writer, comments []*todoist.Comment) {
	for _, c := range comments {
		_, _ = fmt.Fprintf(w, "%s @ %s\n%s\n\n", idColor.Sprint(c.ID), c.PostedAt, c.Content)
	}
}

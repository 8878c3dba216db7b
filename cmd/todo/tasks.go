package main

import (
	"errors"
	"io"
	"strings"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/spf13/cobra"
)

var (
	tasksProject  string
	tasksFilter   string
	tasksLabel    string
	tasksLocal    bool
	taskContent   string
	taskDesc      string
	taskDue       string
	taskPriority  int
	taskLabels    []string
	taskAddTarget string
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tasksLocal && tasksFilter != "" {
			return errors.New("--filter needs the server, it can not be combined with --local")
		}
		var filter todoist.TaskFilter
		if tasksProject != "" {
			project, err := resolveProject(cmd.Context(), tasksProject)
			if err != nil {
				return err
			}
			filter.ProjectID = project.ID
		}
		filter.Filter = tasksFilter
		filter.Label = tasksLabel
		var tasks []*todoist.Task
		if tasksLocal {
			scan := client.SearchTasks().WithCompleted(false)
			if filter.ProjectID != "" {
				scan.WithProjectID(filter.ProjectID)
			}
			if filter.Label != "" {
				scan.WithLabel(filter.Label)
			}
			tasks = scan.Results()
		} else {
			var err error
			if tasks, err = client.GetTasks(cmd.Context(), filter); err != nil {
				return err
			}
		}
		return render(cmd.OutOrStdout(), tasks, func(w io.Writer) {
			writeTasks(w, tasks)
		})
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add CONTENT...",
	Short: "Add a task, to the inbox unless a project is given",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := todoist.NewTaskPatch().WithContent(strings.Join(args, " "))
		if taskAddTarget != "" {
			project, err := resolveProject(cmd.Context(), taskAddTarget)
			if err != nil {
				return err
			}
			patch.WithProjectID(project.ID)
		}
		if taskDesc != "" {
			patch.WithDescription(taskDesc)
		}
		if taskDue != "" {
			patch.WithDueString(taskDue)
		}
		if cmd.Flags().Changed("priority") {
			patch.WithPriority(taskPriority)
		}
		if len(taskLabels) != 0 {
			patch.WithLabels(taskLabels...)
		}
		task, err := client.AddTask(cmd.Context(), patch)
		if errors.Is(err, todoist.ErrEmptyName) {
			return errors.New("task name cannot be empty")
		}
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Task added")
		return render(cmd.OutOrStdout(), task, func(w io.Writer) {
			writeTasks(w, []*todoist.Task{task})
		})
	},
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit TASK",
	Short: "Change a task's content, description, due date, priority or labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := todoist.NewTaskPatch()
		flags := cmd.Flags()
		if flags.Changed("content") {
			patch.WithContent(taskContent)
		}
		if flags.Changed("description") {
			patch.WithDescription(taskDesc)
		}
		if flags.Changed("due") {
			patch.WithDueString(taskDue)
		}
		if flags.Changed("priority") {
			patch.WithPriority(taskPriority)
		}
		if flags.Changed("label") {
			patch.WithLabels(taskLabels...)
		}
		if patch.Empty() {
			return errors.New("nothing to change, see --help")
		}
		task, err := client.UpdateTask(cmd.Context(), todoist.ID(args[0]), patch)
		if errors.Is(err, todoist.ErrEmptyName) {
			return errors.New("task name cannot be empty")
		}
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Task updated")
		return render(cmd.OutOrStdout(), task, func(w io.Writer) {
			writeTasks(w, []*todoist.Task{task})
		})
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:     "done TASK...",
	Aliases: []string{"close", "complete"},
	Short:   "Complete tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := client.CloseTask(cmd.Context(), todoist.ID(id)); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Task %s completed", id)
		}
		return nil
	},
}

var tasksReopenCmd = &cobra.Command{
	Use:   "reopen TASK",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := client.ReopenTask(cmd.Context(), todoist.ID(args[0]))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), task, func(w io.Writer) {
			writeTasks(w, []*todoist.Task{task})
		})
	},
}

var tasksRmCmd = &cobra.Command{
	Use:     "rm TASK...",
	Aliases: []string{"delete"},
	Short:   "Delete tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := client.DeleteTask(cmd.Context(), todoist.ID(id)); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Task %s deleted", id)
		}
		return nil
	},
}

var tasksMvCmd = &cobra.Command{
	Use:     "mv TASK PROJECT",
	Aliases: []string{"move"},
	Short:   "Move a task to another project (the task gets a new id)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := resolveProject(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		task, err := client.MoveTask(cmd.Context(), todoist.ID(args[0]), project.ID)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Task moved to %s", project.Name)
		return render(cmd.OutOrStdout(), task, func(w io.Writer) {
			writeTasks(w, []*todoist.Task{task})
		})
	},
}

func init() {
	tasksListCmd.Flags().StringVarP(&tasksProject, "project", "p", "", "Project id or name")
	tasksListCmd.Flags().StringVar(&tasksFilter, "filter", "", `Todoist filter, e.g., "today | overdue"`)
	tasksListCmd.Flags().StringVarP(&tasksLabel, "label", "l", "", "Label name")
	tasksListCmd.Flags().BoolVar(&tasksLocal, "local", false, "Only show the locally saved tasks, without fetching")

	tasksAddCmd.Flags().StringVarP(&taskAddTarget, "project", "p", "", "Project id or name")
	for _, c := range []*cobra.Command{tasksAddCmd, tasksEditCmd} {
		c.Flags().StringVarP(&taskDesc, "description", "d", "", "Description")
		c.Flags().StringVar(&taskDue, "due", "", `Due date in natural language, e.g., "tomorrow at 5pm"`)
		c.Flags().IntVar(&taskPriority, "priority", 1, "Priority, from 1 (normal) to 4 (urgent)")
		c.Flags().StringSliceVarP(&taskLabels, "label", "l", nil, "Label name (repeatable)")
	}
	tasksEditCmd.Flags().StringVarP(&taskContent, "content", "c", "", "Content")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksEditCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksReopenCmd)
	tasksCmd.AddCommand(tasksRmCmd)
	tasksCmd.AddCommand(tasksMvCmd)
	rootCmd.AddCommand(tasksCmd)
}

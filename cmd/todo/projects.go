package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/spf13/cobra"
)

var (
	projectsLocal     bool
	projectsFavorites bool
	projectFavorite   bool
	projectColor      string
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, favorites marked with a star",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !projectsLocal {
			if _, err := client.GetProjects(cmd.Context()); err != nil {
				return err
			}
		}
		projects := client.SearchProjects().Results()
		if projectsFavorites {
			projects = client.Favorites()
		}
		return render(cmd.OutOrStdout(), projects, func(w io.Writer) {
			writeProjects(w, projects)
		})
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Add a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := todoist.NewProjectPatch().WithName(strings.Join(args, " "))
		if projectFavorite {
			patch.WithFavorite(true)
		}
		if projectColor != "" {
			patch.WithColor(projectColor)
		}
		project, err := client.AddProject(cmd.Context(), patch)
		if errors.Is(err, todoist.ErrEmptyName) {
			return errors.New("project name cannot be empty")
		}
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Project %s added", project.Name)
		return render(cmd.OutOrStdout(), project, func(w io.Writer) {
			writeProjects(w, []*todoist.Project{project})
		})
	},
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename PROJECT NAME...",
	Short: "Rename a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := resolveProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		project, err := client.UpdateProject(cmd.Context(), current.ID,
			todoist.NewProjectPatch().WithName(strings.Join(args[1:], " ")))
		if errors.Is(err, todoist.ErrEmptyName) {
			return errors.New("project name cannot be empty")
		}
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Project renamed from %s to %s", current.Name, project.Name)
		return render(cmd.OutOrStdout(), project, func(w io.Writer) {
			writeProjects(w, []*todoist.Project{project})
		})
	},
}

var projectsRmCmd = &cobra.Command{
	Use:     "rm PROJECT",
	Aliases: []string{"delete"},
	Short:   "Delete a project and all of its tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := resolveProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if project.IsInboxProject {
			return errors.New("the inbox can not be deleted")
		}
		if err := client.DeleteProject(cmd.Context(), project.ID); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Project %s deleted", project.Name)
		return nil
	},
}

func favoriteCmd(use string, favorite bool) *cobra.Command {
	short := "Add a project to the favorites"
	if !favorite {
		short = "Remove a project from the favorites"
	}
	return &cobra.Command{
		Use:   use + " PROJECT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := resolveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			project, err := client.SetFavorite(cmd.Context(), current.ID, favorite)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Favorite status of %s updated", project.Name)
			return render(cmd.OutOrStdout(), project, func(w io.Writer) {
				writeProjects(w, []*todoist.Project{project})
			})
		},
	}
}

// resolveProject accepts a project id or name. If the local data doesn't know about it, projects are fetched once
// before giving up.
func resolveProject(ctx context.Context, arg string) (*todoist.Project, error) {
	lookup := func() (*todoist.Project, bool) {
		if p, ok := client.ProjectByID(todoist.ID(arg)); ok {
			return p, true
		}
		if projects := client.SearchProjects().WithExactName(arg).Results(); len(projects) != 0 {
			return projects[0], true
		}
		return nil, false
	}
	if p, ok := lookup(); ok {
		return p, nil
	}
	if _, err := client.GetProjects(ctx); err != nil {
		return nil, err
	}
	if p, ok := lookup(); ok {
		return p, nil
	}
	return nil, fmt.Errorf("project %q: %w", arg, todoist.ErrNotFound)
}

func init() {
	projectsListCmd.Flags().BoolVar(&projectsLocal, "local", false, "Only show the locally saved projects, without fetching")
	projectsListCmd.Flags().BoolVar(&projectsFavorites, "favorites", false, "Only show favorite projects")
	projectsAddCmd.Flags().BoolVar(&projectFavorite, "favorite", false, "Add the project to the favorites")
	projectsAddCmd.Flags().StringVar(&projectColor, "color", "", "Project color name, e.g., berry_red")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsRenameCmd)
	projectsCmd.AddCommand(projectsRmCmd)
	projectsCmd.AddCommand(favoriteCmd("fav", true))
	projectsCmd.AddCommand(favoriteCmd("unfav", false))
	rootCmd.AddCommand(projectsCmd)
}

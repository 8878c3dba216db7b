package main

import (
	"io"
	"strings"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment", "c"},
	Short:   "Manage task comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list TASK",
	Short: "List the comments of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := client.GetComments(cmd.Context(), todoist.ID(args[0]))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), comments, func(w io.Writer) {
			writeComments(w, comments)
		})
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add TASK TEXT...",
	Short: "Comment on a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := todoist.NewCommentPatch().WithTaskID(todoist.ID(args[0])).WithContent(strings.Join(args[1:], " "))
		comment, err := client.AddComment(cmd.Context(), patch)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Comment %s added", comment.ID)
		return render(cmd.OutOrStdout(), comment, func(w io.Writer) {
			writeComments(w, []*todoist.Comment{comment})
		})
	},
}

var commentsRmCmd = &cobra.Command{
	Use:   "rm COMMENT",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteComment(cmd.Context(), todoist.ID(args[0])); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Comment %s deleted", args[0])
		return nil
	},
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsRmCmd)
	rootCmd.AddCommand(commentsCmd)
}

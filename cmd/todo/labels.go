package main

import (
	"io"
	"strings"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:     "labels",
	Aliases: []string{"label", "l"},
	Short:   "Manage personal labels",
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := client.GetLabels(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), labels, func(w io.Writer) {
			writeLabels(w, labels)
		})
	},
}

var labelsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := client.AddLabel(cmd.Context(), todoist.NewLabelPatch().WithName(strings.TrimSpace(args[0])))
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Label %s added", label.Name)
		return render(cmd.OutOrStdout(), label, func(w io.Writer) {
			writeLabels(w, []*todoist.Label{label})
		})
	},
}

var labelsRmCmd = &cobra.Command{
	Use:   "rm LABEL",
	Short: "Delete a label, by name or id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := todoist.ID(args[0])
		if label := client.LabelByName(args[0]); label != nil {
			id = label.ID
		}
		if err := client.DeleteLabel(cmd.Context(), id); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Label %s deleted", args[0])
		return nil
	},
}

func init() {
	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsAddCmd)
	labelsCmd.AddCommand(labelsRmCmd)
	rootCmd.AddCommand(labelsCmd)
}

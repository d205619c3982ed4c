package cmd

import (
	"fmt"
	"io"

	"action-classifier/infrastructure/onnx"

	"github.com/spf13/cobra"
)

var labelsPath string

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the labels the model can predict",
	Long: `List the model's labels in output order.

Example:
  action-classifier labels
  action-classifier labels --file models/kinetics400.txt`,
	Args: cobra.NoArgs,
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.Flags().StringVar(&labelsPath, "file", "", "Labels file (defaults to model.labels_path)")
}

func runLabels(cmd *cobra.Command, args []string) error {
	path := labelsPath
	if path == "" {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		path = cfg.Model.LabelsPath
	}
	return RunLabelsWithDependencies(path, cmd.OutOrStdout())
}

// RunLabelsWithDependencies prints the labels in path (for testing)
func RunLabelsWithDependencies(path string, out io.Writer) error {
	labels, err := onnx.LoadLabels(path)
	if err != nil {
		return err
	}
	for i, l := range labels {
		fmt.Fprintf(out, "%4d  %s\n", i, l)
	}
	fmt.Fprintf(out, "\n%d label(s)\n", len(labels))
	return nil
}

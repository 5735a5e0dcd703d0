package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/pkg/instance"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// NewRedoCmd creates the redo command.
func NewRedoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "redo <instance> <libraries|assets|jar>",
		Short:     "Repeat one install stage of an instance",
		Long:      "Download the libraries, assets or game jar of an existing instance again",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(instance.StageLibraries), string(instance.StageAssets), string(instance.StageJar)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedo(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runRedo(cmd *cobra.Command, name, stageName string) error {
	stage, err := instance.ParseStage(stageName)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	err = withProgress(cmd, func(ctx context.Context, progress chan<- orchestrator.Event) error {
		return a.assembler.RedoStage(ctx, name, stage, progress)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Redid %s for %s\n", stage, name)
	return nil
}

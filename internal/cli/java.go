package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/java"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// NewJavaCmd creates the java command with subcommands.
func NewJavaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "java",
		Short: "Manage Java runtimes",
		Long:  "Install and list the Java runtimes the launcher provisions",
	}

	cmd.AddCommand(
		newJavaInstallCmd(),
		newJavaListCmd(),
	)

	return cmd
}

func newJavaInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "install <8|16|17|21|25>",
		Short:     "Install a Java runtime",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"8", "16", "17", "21", "25"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJavaInstall(cmd, args[0])
		},
	}

	return cmd
}

func newJavaListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed Java runtimes",
		Args:  cobra.NoArgs,
		RunE:  runJavaList,
	}

	return cmd
}

func runJavaInstall(cmd *cobra.Command, arg string) error {
	v, err := java.Parse(arg)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	var bin string
	err = withProgress(cmd, func(ctx context.Context, progress chan<- orchestrator.Event) error {
		bin, err = a.runtimes.EnsureInstalled(ctx, v, progress)
		return err
	})
	if err != nil {
		return err
	}

	logger.Success("Java installed", logger.Fields{"version": v.String(), "binary": bin})
	fmt.Fprintln(cmd.OutOrStdout(), bin)
	return nil
}

func runJavaList(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	installed := a.runtimes.List()
	if len(installed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No Java runtimes installed.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Status", "Directory"})
	for _, in := range installed {
		status := "complete"
		if !in.Complete {
			status = "incomplete"
		}
		t.AppendRow(table.Row{in.Version.String(), status, in.Dir})
	}
	t.Render()
	return nil
}

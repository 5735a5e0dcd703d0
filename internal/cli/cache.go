package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage shared launcher data",
		Long:  "Show the size of, and clean, the Java runtimes and assets shared by all instances",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var opts cache.CleanOptions

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean shared data",
		Long:  "Remove Java runtimes and assets to free up disk space. Without flags both are removed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Java, "java", false, "Clean only Java runtimes")
	cmd.Flags().BoolVar(&opts.Assets, "assets", false, "Clean only assets")
	cmd.Flags().BoolVar(&opts.Incomplete, "incomplete", false, "Clean only Java runtimes whose install never finished")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the disk usage of the launcher directory",
		RunE:  runCacheInfo,
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show launcher directory path",
		RunE:  runCacheDir,
	}

	return cmd
}

func newCacheOperation() (*cache.Operation, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(cache.NewManager(cfg.Settings.LauncherDir)), nil
}

func runCacheClean(cmd *cobra.Command, opts cache.CleanOptions) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}
	msg, err := op.Clean(opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}
	msg, err := op.GetInfo()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), op.GetDirectory())
	return nil
}

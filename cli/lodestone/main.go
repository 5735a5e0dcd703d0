package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/internal/cli"
	"github.com/glorpus-work/lodestone/internal/logger"
)

var (
	configPath string
	verbose    bool
	noProgress bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Debug("command failed", logger.Fields{"error": fmt.Sprintf("%+v", err)})
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lodestone",
		Short: "A headless Minecraft instance manager",
		Long: `lodestone assembles Minecraft client instances and dedicated servers:
- Instances: game jar, libraries, natives and assets from the official manifests
- Loaders: Fabric, Quilt, Forge and NeoForge
- Runtimes: the Java versions each game version needs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "do not render progress bars")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.NoProgress = &noProgress

	cmd.AddCommand(
		cli.NewCreateCmd(),
		cli.NewServerCmd(),
		cli.NewLoaderCmd(),
		cli.NewVersionsCmd(),
		cli.NewJavaCmd(),
		cli.NewRedoCmd(),
		cli.NewModsCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewHookCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}

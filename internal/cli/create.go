package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/instance"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	var (
		noAssets bool
		loader   loaderFlags
	)

	cmd := &cobra.Command{
		Use:   "create <name> <version>",
		Short: "Create a client instance",
		Long:  "Download the game jar, libraries and assets of a version into a new instance, optionally with a mod loader",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], args[1], !noAssets, loader)
		},
	}

	cmd.Flags().BoolVar(&noAssets, "no-assets", false, "Skip downloading assets")
	loader.register(cmd)

	return cmd
}

// NewServerCmd creates the server command.
func NewServerCmd() *cobra.Command {
	var loader loaderFlags

	cmd := &cobra.Command{
		Use:   "server <name> <version>",
		Short: "Create a dedicated server",
		Long:  "Download the server jar of a version into a new server directory, optionally with a mod loader",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, args[0], args[1], loader)
		},
	}

	loader.register(cmd)

	return cmd
}

// loaderFlags are the optional loader selection shared by create and server.
type loaderFlags struct {
	kind    string
	backend string
	version string
}

func (f *loaderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "loader", "", "Mod loader to install (fabric, quilt, forge, neoforge)")
	cmd.Flags().StringVar(&f.backend, "loader-backend", "", "Fabric-family backend (fabric, legacy_fabric, babric, cursed_legacy, ornithe)")
	cmd.Flags().StringVar(&f.version, "loader-version", "", "Loader version, latest when empty")
}

func (f loaderFlags) request() *instance.LoaderRequest {
	if f.kind == "" {
		return nil
	}
	return &instance.LoaderRequest{Kind: f.kind, Backend: f.backend, Version: f.version}
}

func runCreate(cmd *cobra.Command, name, version string, assets bool, loader loaderFlags) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	err = withProgress(cmd, func(ctx context.Context, progress chan<- orchestrator.Event) error {
		return a.assembler.CreateInstance(ctx, instance.CreateOptions{
			Name:           name,
			VersionID:      version,
			DownloadAssets: assets,
			Loader:         loader.request(),
			Progress:       progress,
		})
	})
	if err != nil {
		return err
	}

	logger.Success("Instance created", logger.Fields{"name": name, "version": version})
	fmt.Fprintf(cmd.OutOrStdout(), "Created instance %s at %s\n", name, a.assembler.InstanceDir(name))
	return nil
}

func runServer(cmd *cobra.Command, name, version string, loader loaderFlags) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	err = withProgress(cmd, func(ctx context.Context, progress chan<- orchestrator.Event) error {
		return a.assembler.CreateServer(ctx, instance.ServerOptions{
			Name:      name,
			VersionID: version,
			Loader:    loader.request(),
			Progress:  progress,
		})
	})
	if err != nil {
		return err
	}

	logger.Success("Server created", logger.Fields{"name": name, "version": version})
	fmt.Fprintf(cmd.OutOrStdout(), "Created server %s at %s\n", name, a.assembler.ServerDir(name))
	return nil
}

// withProgress runs fn with a progress channel rendered on stderr.
func withProgress(cmd *cobra.Command, fn func(ctx context.Context, progress chan<- orchestrator.Event) error) error {
	view := startProgress(cmd.ErrOrStderr())
	err := fn(cmd.Context(), view.Events())
	view.Stop(err != nil)
	return err
}

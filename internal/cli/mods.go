package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/config"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/modindex"
)

// NewModsCmd creates the mods command with subcommands.
func NewModsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mods",
		Short: "Inspect and repair the mod index",
		Long:  "Work with the mod_index.json of an instance or server",
	}

	cmd.PersistentFlags().Bool("server", false, "Target a server instead of a client instance")

	cmd.AddCommand(
		newModsFixCmd(),
		newModsListCmd(),
	)

	return cmd
}

func newModsFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <instance>",
		Short: "Drop index entries whose files are gone",
		Args:  cobra.ExactArgs(1),
		RunE:  runModsFix,
	}

	return cmd
}

func newModsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <instance>",
		Short: "List indexed mods",
		Args:  cobra.ExactArgs(1),
		RunE:  runModsList,
	}

	return cmd
}

// openModIndex loads the index of the named instance or server. Loading
// already reconciles it with the mods directory.
func openModIndex(cmd *cobra.Command, name string) (*modindex.Index, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	isServer, err := cmd.Flags().GetBool("server")
	if err != nil {
		return nil, err
	}
	return loadModIndex(cfg, name, isServer)
}

func loadModIndex(cfg *config.Config, name string, isServer bool) (*modindex.Index, error) {
	dir := fsutil.InstanceDir(cfg.Settings.LauncherDir, name)
	dotMinecraft := filepath.Join(dir, fsutil.DotMinecraftDirName)
	if isServer {
		dir = fsutil.ServerDir(cfg.Settings.LauncherDir, name)
		dotMinecraft = dir
	}
	if !fsutil.Exists(dir) {
		return nil, errutils.ErrInstanceNotFoundWithName(name)
	}
	return modindex.Load(dotMinecraft, isServer)
}

func runModsFix(cmd *cobra.Command, args []string) error {
	idx, err := openModIndex(cmd, args[0])
	if err != nil {
		return err
	}
	removed, err := idx.Fix()
	if err != nil {
		return err
	}
	if err := idx.Save(); err != nil {
		return err
	}

	logger.Success("Mod index fixed", logger.Fields{"path": idx.Path(), "mods": idx.Len(), "removed": len(removed)})
	fmt.Fprintf(cmd.OutOrStdout(), "Mod index of %s holds %d mods\n", args[0], idx.Len())
	return nil
}

func runModsList(cmd *cobra.Command, args []string) error {
	idx, err := openModIndex(cmd, args[0])
	if err != nil {
		return err
	}
	if idx.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No mods installed.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Version", "Enabled", "Source"})
	for _, id := range idx.IDs() {
		m, _ := idx.Get(id)
		t.AppendRow(table.Row{id, m.Name, m.InstalledVersion, m.Enabled, m.ProjectSource})
	}
	t.Render()
	return nil
}

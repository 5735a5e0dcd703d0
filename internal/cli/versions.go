package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/pkg/model"
)

// NewVersionsCmd creates the versions command.
func NewVersionsCmd() *cobra.Command {
	var (
		versionType string
		serverOnly  bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List installable game versions",
		Long:  "Show the merged version manifest, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd, versionType, serverOnly, limit)
		},
	}

	cmd.Flags().StringVar(&versionType, "type", "", "Only show one type (release, snapshot, old_beta, old_alpha)")
	cmd.Flags().BoolVar(&serverOnly, "server-only", false, "Only show versions with a dedicated server")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many versions, all when 0")

	return cmd
}

func runVersions(cmd *cobra.Command, versionType string, serverOnly bool, limit int) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	m, err := a.versions.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	rows := filterVersions(m.Versions, versionType, serverOnly, limit)
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No versions match.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Latest release %s, snapshot %s", m.Latest.Release, m.Latest.Snapshot))
	t.AppendHeader(table.Row{"ID", "Type", "Released", "Server"})
	for _, v := range rows {
		server := "no"
		if v.SupportsServer() {
			server = "yes"
		}
		t.AppendRow(table.Row{v.ID, v.Type, v.ReleaseTime, server})
	}
	t.Render()
	return nil
}

func filterVersions(versions []model.Version, versionType string, serverOnly bool, limit int) []*model.Version {
	var out []*model.Version
	for i := range versions {
		v := &versions[i]
		if versionType != "" && v.Type != versionType {
			continue
		}
		if serverOnly && !v.SupportsServer() {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

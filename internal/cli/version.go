package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/instance"
)

// Set at build time with -ldflags.
var (
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for lodestone",
		Run:   runVersion,
	}

	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lodestone version %s\n", instance.LauncherVersion)
	fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
	fmt.Fprintf(out, "User agent: %s\n", http.DefaultUserAgent)
}

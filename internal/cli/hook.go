package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/pkg/hooks"
)

// NewHookCmd creates the hook command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Work with lifecycle hook scripts",
		Long:  "Generate Tengo scripts for the post_create and post_loader hooks named in the configuration",
	}

	cmd.AddCommand(newHookTemplateCmd())

	return cmd
}

func newHookTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "template <post_create|post_loader>",
		Short:     "Print a starter hook script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PostCreate), string(hooks.PostLoader)},
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if hookType != hooks.PostCreate && hookType != hooks.PostLoader {
				return hooks.ErrUnsupportedHookType(args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), hooks.HookTemplate(hookType))
			return nil
		},
	}

	return cmd
}

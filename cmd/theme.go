package cmd

import (
	"fmt"

	"github.com/serisow/studio/config"
	"github.com/serisow/studio/prefs"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle]",
	Short: "Show or change the saved theme",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemeCommand,
}

func runThemeCommand(cmd *cobra.Command, args []string) error {
	store := prefs.NewStore(config.Load().PrefsPath, terminalTheme)
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), store.Theme())
		return nil
	}

	if args[0] == "toggle" {
		theme, err := store.Toggle()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	}

	theme, err := prefs.ParseTheme(args[0])
	if err != nil {
		return err
	}
	if err := store.SetTheme(theme); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme)
	return nil
}

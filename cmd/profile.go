package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"sltforge/config"
)

var profileCmd = &cobra.Command{
	Use:           "profile [list|set|default]",
	Short:         "Manage config profiles",
	Args:          cobra.MinimumNArgs(1),
	RunE:          runProfile,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return formatError(fmt.Errorf("failed to load config: %w", err))
	}

	switch args[0] {
	case "list":
		names := cfg.ProfileNames()
		sort.Strings(names)
		for _, name := range names {
			profile := cfg.Profiles[name]
			marker := " "
			if name == cfg.Default {
				marker = "*"
			}
			fmt.Printf("%s %-16s main=%s", marker, name, profile.Main)
			if profile.DLCDir != "" {
				fmt.Printf(" dlc=%s", profile.DLCDir)
			}
			fmt.Println()
		}
	case "set":
		if len(args) != 2 {
			return formatError(fmt.Errorf("usage: profile set <name> --main <path> [--dlc <dir>]"))
		}
		mainPath, _ := cmd.Flags().GetString("main")
		if mainPath == "" {
			return formatError(fmt.Errorf("--main is required"))
		}
		dlcDir, _ := cmd.Flags().GetString("dlc")
		cfg.SetProfile(args[1], config.Profile{Main: mainPath, DLCDir: dlcDir})
		if err := cfg.SaveConfig(); err != nil {
			return formatError(err)
		}
		fmt.Printf("✅ Profile %s saved\n", args[1])
	case "default":
		if len(args) != 2 {
			return formatError(fmt.Errorf("usage: profile default <name>"))
		}
		if _, err := cfg.GetProfile(args[1]); err != nil {
			return formatError(err)
		}
		cfg.Default = args[1]
		if err := cfg.SaveConfig(); err != nil {
			return formatError(err)
		}
		fmt.Printf("✅ Default profile set to %s\n", args[1])
	default:
		return formatError(fmt.Errorf("unsupported profile action: %s", args[0]))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sltforge/config"
	"sltforge/internal"
	"sltforge/slt"
)

var rootCmd = &cobra.Command{
	Use:   "sltforge",
	Short: "Clone cars and engines between racing game databases",
	Long: `sltforge clones cars and engines from expansion databases into a
game's MAIN database, remapping identifier blocks so the cloned content
gets its own id space. It also deletes, inspects and edits cloned entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			internal.SetLogLevel("debug")
		} else {
			internal.SetLogLevel("error")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("profile", "", "Config profile to use")
	rootCmd.PersistentFlags().String("main", "", "Path to the MAIN database (overrides profile)")
	rootCmd.PersistentFlags().String("dlc", "", "Folder searched recursively for auxiliary databases (overrides profile)")
}

// resolveTarget resolves the MAIN path and ordered source list from flags
// first, then the config profile.
func resolveTarget(cmd *cobra.Command) (mainPath string, sources []string, err error) {
	mainPath, _ = cmd.Flags().GetString("main")
	dlcDir, _ := cmd.Flags().GetString("dlc")

	if mainPath == "" {
		profileName, _ := cmd.Flags().GetString("profile")
		cfg, err := config.LoadConfig()
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		profile, err := cfg.GetProfile(profileName)
		if err != nil {
			return "", nil, fmt.Errorf("%w (set --main or configure a profile)", err)
		}
		mainPath = profile.Main
		if dlcDir == "" {
			dlcDir = profile.DLCDir
		}
	}

	sources, err = slt.BuildSourceList(mainPath, dlcDir)
	if err != nil {
		return "", nil, err
	}

	internal.Logger.Info("Resolved sources", "main", mainPath, "count", len(sources))
	return mainPath, sources, nil
}

// auxSources drops the MAIN path from a source list.
func auxSources(sources []string) []string {
	if len(sources) <= 1 {
		return nil
	}
	return sources[1:]
}

func formatError(err error) error {
	errStr := err.Error()

	if strings.Contains(errStr, "database is locked") {
		return fmt.Errorf("❌ The database is locked. Close the game and any other tool using it, then retry.")
	}

	if strings.Contains(errStr, "file is not a database") {
		return fmt.Errorf("❌ Not a valid database file. Please check the path.")
	}

	if strings.Contains(errStr, "attempt to write a readonly database") {
		return fmt.Errorf("❌ The target database is read-only. Please check file permissions.")
	}

	return fmt.Errorf("❌ %s", errStr)
}

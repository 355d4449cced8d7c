package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sltforge/internal"
	"sltforge/slt"
)

var backupCmd = &cobra.Command{
	Use:           "backup",
	Short:         "Write a timestamped copy of the MAIN database",
	Args:          cobra.NoArgs,
	RunE:          runBackup,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runBackup(cmd *cobra.Command, args []string) error {
	mainPath, _, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	internal.Logger.Info("Backing up database", "path", mainPath)

	backupPath, err := slt.Backup(mainPath)
	if err != nil {
		return formatError(err)
	}

	fmt.Printf("💾 Backup written to %s\n", backupPath)
	return nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/internal"
	"sltforge/slt"
)

var deleteCmd = &cobra.Command{
	Use:           "delete <car-id>",
	Short:         "Delete a car and its dependent rows from the MAIN database",
	Args:          cobra.ExactArgs(1),
	RunE:          runDelete,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runDelete(cmd *cobra.Command, args []string) error {
	carID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return formatError(fmt.Errorf("invalid car id: %s", args[0]))
	}

	mainPath, _, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := internal.Confirm(fmt.Sprintf("Delete car %d and all its dependent rows from %s?", carID, mainPath), false)
		if err != nil {
			return formatError(err)
		}
		if !ok {
			return formatError(fmt.Errorf("operation cancelled by user"))
		}
	}

	noBackup, _ := cmd.Flags().GetBool("no-backup")
	if !noBackup {
		backupPath, err := slt.Backup(mainPath)
		if err != nil {
			return formatError(fmt.Errorf("backup failed: %w", err))
		}
		fmt.Printf("💾 Backup written to %s\n", backupPath)
	}

	internal.Logger.Info("Deleting car", "target", mainPath, "carID", carID)

	report, err := cloner.DeleteCar(mainPath, carID)
	if err != nil {
		return formatError(err)
	}

	fmt.Printf("✅ Deleted car %d: %d row(s) across %d table(s)\n",
		report.CarID, report.Total(), len(report.Counts))
	for _, table := range report.Tables() {
		fmt.Printf("  %6d  %s\n", report.Counts[table], table)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	deleteCmd.Flags().Bool("no-backup", false, "Skip the automatic backup of the MAIN database")
}

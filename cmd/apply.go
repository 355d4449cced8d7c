package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/internal"
	"sltforge/slt"
)

var applyCmd = &cobra.Command{
	Use:           "apply [subsystem|camber]",
	Short:         "Apply a donor car's subsystem or a camber preset to a car in MAIN",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runApply,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runApply(cmd *cobra.Command, args []string) error {
	mainPath, sources, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	targetCar, _ := cmd.Flags().GetInt64("target-car")
	if targetCar == 0 {
		return formatError(fmt.Errorf("--target-car is required"))
	}

	noBackup, _ := cmd.Flags().GetBool("no-backup")
	if !noBackup {
		backupPath, err := slt.Backup(mainPath)
		if err != nil {
			return formatError(fmt.Errorf("backup failed: %w", err))
		}
		fmt.Printf("💾 Backup written to %s\n", backupPath)
	}

	subsystem := ""
	if len(args) > 0 {
		subsystem = args[0]
	}

	if subsystem == "camber" {
		front, _ := cmd.Flags().GetFloat64("front")
		rear, _ := cmd.Flags().GetFloat64("rear")
		if err := cloner.ApplyCamber(mainPath, targetCar, front, rear); err != nil {
			return formatError(err)
		}
		fmt.Printf("✅ Applied camber %.1f/%.1f to car %d\n", front, rear, targetCar)
		return nil
	}

	if subsystem == "" {
		db, err := slt.OpenReadOnly(mainPath)
		if err != nil {
			return formatError(err)
		}
		names, err := cloner.SupportedSubsystems(db)
		db.Close()
		if err != nil {
			return formatError(err)
		}
		subsystem, err = internal.PickOne("Select subsystem to apply:", names)
		if err != nil {
			return formatError(err)
		}
	}

	donorCar, _ := cmd.Flags().GetInt64("donor-car")
	donorPath, _ := cmd.Flags().GetString("donor")
	if donorCar == 0 {
		cars, err := slt.ListCars(sources)
		if err != nil {
			return formatError(err)
		}
		picked, err := internal.PickCar(cars)
		if err != nil {
			return formatError(err)
		}
		donorCar = picked.ID
		if donorPath == "" {
			donorPath = picked.Source
		}
	}
	if donorPath == "" {
		donorPath = mainPath
	}

	level, _ := cmd.Flags().GetInt64("level")

	internal.Logger.Info("Applying subsystem",
		"subsystem", subsystem,
		"targetCar", targetCar,
		"donorCar", donorCar,
		"donor", donorPath,
		"level", level)

	report, err := cloner.ApplySubsystem(cloner.ApplySubsystemRequest{
		TargetPath:  mainPath,
		DonorPath:   donorPath,
		TargetCarID: targetCar,
		DonorCarID:  donorCar,
		Subsystem:   subsystem,
		Level:       level,
	})
	if err != nil {
		return formatError(err)
	}

	fmt.Printf("✅ Applied %s level %d from car %d to car %d (%s)\n",
		subsystem, level, donorCar, targetCar, report.Table)
	for _, note := range report.Notes {
		fmt.Printf("  ⚠️  %s\n", note)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().Int64("target-car", 0, "Car id in MAIN receiving the subsystem (required)")
	applyCmd.Flags().Int64("donor-car", 0, "Donor car id (interactive picker when omitted)")
	applyCmd.Flags().String("donor", "", "Donor database path (defaults to the picker's source)")
	applyCmd.Flags().Int64("level", 0, "Upgrade level to transplant")
	applyCmd.Flags().Float64("front", -2.5, "Front static camber (camber only)")
	applyCmd.Flags().Float64("rear", -4.0, "Rear static camber (camber only)")
	applyCmd.Flags().Bool("no-backup", false, "Skip the automatic backup of the MAIN database")
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/internal"
	"sltforge/slt"
)

var cloneCmd = &cobra.Command{
	Use:           "clone [car|engine]",
	Short:         "Clone a car or engine into the MAIN database",
	Args:          cobra.ExactArgs(1),
	RunE:          runClone,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runClone(cmd *cobra.Command, args []string) error {
	cloneType := args[0]

	mainPath, sources, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	noBackup, _ := cmd.Flags().GetBool("no-backup")
	if !noBackup {
		backupPath, err := slt.Backup(mainPath)
		if err != nil {
			return formatError(fmt.Errorf("backup failed: %w", err))
		}
		fmt.Printf("💾 Backup written to %s\n", backupPath)
	}

	switch cloneType {
	case "car":
		if err := cloneCar(cmd, mainPath, sources); err != nil {
			return formatError(err)
		}
	case "engine":
		if err := cloneEngine(cmd, mainPath, sources); err != nil {
			return formatError(err)
		}
	default:
		return formatError(fmt.Errorf("unsupported clone type: %s", cloneType))
	}

	return nil
}

func cloneCar(cmd *cobra.Command, mainPath string, sources []string) error {
	donorID, _ := cmd.Flags().GetInt64("donor")
	newID, _ := cmd.Flags().GetInt64("new-id")
	year, _ := cmd.Flags().GetInt64("year")
	sourcePath, _ := cmd.Flags().GetString("source")

	if donorID == 0 {
		cars, err := slt.ListCars(sources)
		if err != nil {
			return err
		}
		picked, err := internal.PickCar(cars)
		if err != nil {
			return err
		}
		donorID = picked.ID
		if sourcePath == "" {
			sourcePath = picked.Source
		}
	}
	if sourcePath == "" {
		sourcePath = mainPath
	}

	if newID == 0 {
		suggested, err := cloner.SuggestNextCarID(mainPath, cloner.DefaultSuggestFloor, auxSources(sources))
		if err != nil {
			return err
		}
		newID = suggested
		fmt.Printf("Using suggested new car id %d\n", newID)
	}

	internal.Logger.Info("Starting car clone",
		"source", sourcePath,
		"target", mainPath,
		"donor", donorID,
		"newID", newID)

	req := cloner.CarCloneRequest{
		SourcePath:     sourcePath,
		TargetPath:     mainPath,
		DonorID:        donorID,
		NewID:          newID,
		YearMarker:     year,
		AuxSourcePaths: auxSources(sources),
	}

	start := time.Now()
	var report *cloner.CloneReport
	err := internal.SimpleSpinner(fmt.Sprintf("Cloning car %d -> %d", donorID, newID), func() error {
		var err error
		report, err = cloner.CloneCar(req)
		return err
	})
	internal.FinishLine()
	if err != nil {
		return err
	}

	internal.Logger.Info("Car clone completed", "duration", time.Since(start))

	fmt.Printf("\n✅ Cloned car %d into %d (body %d -> %d)\n",
		report.DonorID, report.NewID, report.SourceBodyID, report.NewBodyID)
	for _, table := range report.TablesByCount() {
		fmt.Printf("  %6d  %s\n", report.TablesTouched[table], table)
	}
	return nil
}

func cloneEngine(cmd *cobra.Command, mainPath string, sources []string) error {
	donorID, _ := cmd.Flags().GetInt64("donor")
	newID, _ := cmd.Flags().GetInt64("new-id")
	sourcePath, _ := cmd.Flags().GetString("source")

	if donorID == 0 {
		engines, err := slt.ListEngines(sources)
		if err != nil {
			return err
		}
		picked, err := internal.PickEngine(engines)
		if err != nil {
			return err
		}
		donorID = picked.ID
		if sourcePath == "" {
			sourcePath = picked.Source
		}
	}
	if sourcePath == "" {
		sourcePath = mainPath
	}

	if newID == 0 {
		suggested, err := cloner.SuggestNextEngineID(mainPath, cloner.DefaultSuggestFloor, auxSources(sources))
		if err != nil {
			return err
		}
		newID = suggested
		fmt.Printf("Using suggested new engine id %d\n", newID)
	}

	internal.Logger.Info("Starting engine clone",
		"source", sourcePath,
		"target", mainPath,
		"donor", donorID,
		"newID", newID)

	req := cloner.EngineCloneRequest{
		SourcePath:     sourcePath,
		TargetPath:     mainPath,
		DonorID:        donorID,
		NewID:          newID,
		AuxSourcePaths: auxSources(sources),
	}

	start := time.Now()
	var report *cloner.EngineCloneReport
	err := internal.SimpleSpinner(fmt.Sprintf("Cloning engine %d -> %d", donorID, newID), func() error {
		var err error
		report, err = cloner.CloneEngine(req)
		return err
	})
	internal.FinishLine()
	if err != nil {
		return err
	}

	internal.Logger.Info("Engine clone completed", "duration", time.Since(start))

	name := slt.ResolveEngineName(sources, donorID)
	if name != "" {
		fmt.Printf("\n✅ Cloned engine %d (%s) into %d: %d row(s), %d torque curve(s)\n",
			donorID, name, newID, report.RowsWritten, report.TorqueCurves)
	} else {
		fmt.Printf("\n✅ Cloned engine %d into %d: %d row(s), %d torque curve(s)\n",
			donorID, newID, report.RowsWritten, report.TorqueCurves)
	}
	for _, note := range report.Notes {
		fmt.Printf("  ⚠️  %s\n", note)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cloneCmd)

	cloneCmd.Flags().Int64("donor", 0, "Donor car/engine id (interactive picker when omitted)")
	cloneCmd.Flags().Int64("new-id", 0, "New id in the target (suggested when omitted)")
	cloneCmd.Flags().Int64("year", cloner.DefaultYearMarker, "Year marker written to the cloned car")
	cloneCmd.Flags().String("source", "", "Donor database path (defaults to the picker's source)")
	cloneCmd.Flags().Bool("no-backup", false, "Skip the automatic backup of the MAIN database")
}

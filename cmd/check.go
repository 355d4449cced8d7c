package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/internal"
)

var checkCmd = &cobra.Command{
	Use:           "check",
	Short:         "Check cloned cars for structural problems",
	Args:          cobra.NoArgs,
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	mainPath, _, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	minID, _ := cmd.Flags().GetInt64("min-id")
	req := cloner.CheckRequest{
		TargetPath: mainPath,
		MinID:      minID,
	}
	if cmd.Flags().Changed("year-marker") {
		marker, _ := cmd.Flags().GetInt64("year-marker")
		req.YearMarker = &marker
	}

	internal.Logger.Info("Running integrity check", "target", mainPath, "minID", minID)

	var issues []string
	err = internal.SimpleSpinner("Checking cloned cars", func() error {
		var err error
		issues, err = cloner.IntegrityCheck(req)
		return err
	})
	internal.FinishLine()
	if err != nil {
		return formatError(err)
	}

	if len(issues) == 0 {
		fmt.Println("✅ No issues found")
		return nil
	}

	fmt.Printf("⚠️  %d issue(s) found:\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  - %s\n", issue)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Int64("min-id", cloner.DefaultSuggestFloor, "Only check cars with id at or above this value")
	checkCmd.Flags().Int64("year-marker", cloner.DefaultYearMarker, "Only check cars whose year column equals this marker")
}

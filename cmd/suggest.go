package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sltforge/cloner"
)

var suggestCmd = &cobra.Command{
	Use:           "suggest [car|engine]",
	Short:         "Suggest the next free car or engine id",
	Args:          cobra.ExactArgs(1),
	RunE:          runSuggest,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	mainPath, sources, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	floor, _ := cmd.Flags().GetInt64("floor")

	var id int64
	switch args[0] {
	case "car":
		id, err = cloner.SuggestNextCarID(mainPath, floor, auxSources(sources))
	case "engine":
		id, err = cloner.SuggestNextEngineID(mainPath, floor, auxSources(sources))
	default:
		return formatError(fmt.Errorf("unsupported suggestion type: %s", args[0]))
	}
	if err != nil {
		return formatError(err)
	}

	fmt.Println(id)
	return nil
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().Int64("floor", cloner.DefaultSuggestFloor, "Lowest id the suggestion may return")
}

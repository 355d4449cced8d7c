package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/slt"
)

var showCmd = &cobra.Command{
	Use:           "show [car|engine] <id>",
	Short:         "Show a car or engine from MAIN with resolved lookup labels",
	Args:          cobra.ExactArgs(2),
	RunE:          runShow,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runShow(cmd *cobra.Command, args []string) error {
	mainPath, sources, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return formatError(fmt.Errorf("invalid id: %s", args[1]))
	}

	db, err := slt.OpenReadOnly(mainPath)
	if err != nil {
		return formatError(err)
	}
	defer db.Close()

	cache := slt.BuildLookupCache(sources)

	switch args[0] {
	case "car":
		row, err := slt.GetCar(db, id)
		if err != nil {
			return formatError(err)
		}
		if row == nil {
			return formatError(fmt.Errorf("car %d not found in target", id))
		}
		fmt.Printf("Car %d\n", id)
		for _, line := range formatRowFields(row, cache) {
			fmt.Println("  " + line)
		}

		body, err := slt.GetCarBodyForCar(db, id)
		if err != nil {
			return formatError(err)
		}
		if body != nil {
			if bodyID, ok := slt.AsInt(body["Id"]); ok {
				fmt.Printf("Body %d\n", bodyID)
			}
		}

		stock, err := cloner.StockEngine(db, id)
		if err != nil {
			return formatError(err)
		}
		if stock != nil {
			if engineID, ok := cloner.StockEngineID(stock); ok {
				if name := slt.ResolveEngineName(sources, engineID); name != "" {
					fmt.Printf("Stock engine %d (%s)\n", engineID, name)
				} else {
					fmt.Printf("Stock engine %d\n", engineID)
				}
			}
		}

		drivetrain, ok, err := cloner.StockDrivetrainID(db, id)
		if err != nil {
			return formatError(err)
		}
		if ok {
			if label := cache["List_DriveType"][drivetrain]; label != "" {
				fmt.Printf("Drivetrain %d (%s)\n", drivetrain, label)
			} else {
				fmt.Printf("Drivetrain %d\n", drivetrain)
			}
		}

	case "engine":
		row, err := slt.GetEngine(db, id)
		if err != nil {
			return formatError(err)
		}
		if row == nil {
			return formatError(fmt.Errorf("engine %d not found in target", id))
		}
		fmt.Printf("Engine %d\n", id)
		for _, line := range formatRowFields(row, cache) {
			fmt.Println("  " + line)
		}

	default:
		return formatError(fmt.Errorf("unsupported show target: %s", args[0]))
	}
	return nil
}

// formatRowFields renders a row's columns in sorted order, appending lookup
// labels to the reference columns the cache can resolve.
func formatRowFields(row slt.Row, cache slt.LookupCache) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	out := make([]string, 0, len(cols))
	for _, c := range cols {
		line := fmt.Sprintf("%-24s %v", c, row[c])
		if id, ok := slt.AsInt(row[c]); ok {
			if label, found := cache.LabelFor(c, id); found {
				line += fmt.Sprintf("  (%s)", label)
			}
		}
		out = append(out, line)
	}
	return out
}

func init() {
	rootCmd.AddCommand(showCmd)
}

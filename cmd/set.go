package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/internal"
	"sltforge/slt"
)

var setCmd = &cobra.Command{
	Use:           "set [car|body|engine|stock-engine] <id> [Column=Value ...]",
	Short:         "Edit fields of a car, body or engine in the MAIN database",
	Args:          cobra.MinimumNArgs(2),
	RunE:          runSet,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runSet(cmd *cobra.Command, args []string) error {
	mainPath, _, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return formatError(fmt.Errorf("invalid id: %s", args[1]))
	}

	// stock-engine takes an engine id, not column assignments.
	if args[0] == "stock-engine" {
		if len(args) != 3 {
			return formatError(fmt.Errorf("usage: set stock-engine <car-id> <engine-id>"))
		}
		engineID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return formatError(fmt.Errorf("invalid engine id: %s", args[2]))
		}
		if err := cloner.AssignStockEngine(mainPath, id, engineID); err != nil {
			return formatError(err)
		}
		fmt.Printf("✅ Car %d stock engine set to %d\n", id, engineID)
		return nil
	}

	updates, err := parseAssignments(args[2:])
	if err != nil {
		return formatError(err)
	}
	if len(updates) == 0 {
		return formatError(fmt.Errorf("no Column=Value assignments given"))
	}

	db, err := slt.Open(mainPath)
	if err != nil {
		return formatError(err)
	}
	defer db.Close()

	internal.Logger.Info("Updating fields", "kind", args[0], "id", id, "columns", len(updates))

	var affected int64
	switch args[0] {
	case "car":
		affected, err = slt.UpdateCar(db, id, updates)
	case "body":
		bodyID := id
		if byCar, _ := cmd.Flags().GetBool("car"); byCar {
			body, err := slt.GetCarBodyForCar(db, id)
			if err != nil {
				return formatError(err)
			}
			if body == nil {
				return formatError(fmt.Errorf("no body row found in the block of car %d", id))
			}
			bodyID, _ = slt.AsInt(body["Id"])
		}
		affected, err = slt.UpdateCarBody(db, bodyID, updates)
	case "engine":
		affected, err = slt.UpdateEngine(db, id, updates)
	default:
		return formatError(fmt.Errorf("unsupported set target: %s", args[0]))
	}
	if err != nil {
		return formatError(err)
	}
	if affected == 0 {
		return formatError(fmt.Errorf("no row with id %d was updated", id))
	}

	fmt.Printf("✅ Updated %d row(s)\n", affected)
	return nil
}

// parseAssignments turns Column=Value arguments into typed update values:
// integers and floats are detected, everything else stays a string.
func parseAssignments(args []string) (map[string]any, error) {
	updates := make(map[string]any, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected Column=Value)", arg)
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			updates[col] = n
		} else if f, err := strconv.ParseFloat(val, 64); err == nil {
			updates[col] = f
		} else {
			updates[col] = val
		}
	}
	return updates, nil
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().Bool("car", false, "Treat the id as a car id and edit its body row (body target only)")
}

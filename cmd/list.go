package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"sltforge/cloner"
	"sltforge/slt"
)

var listCmd = &cobra.Command{
	Use:           "list [cars|engines|subsystems|lookups]",
	Short:         "List cars, engines, lookup labels or transplantable subsystems across sources",
	Args:          cobra.ExactArgs(1),
	RunE:          runList,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runList(cmd *cobra.Command, args []string) error {
	mainPath, sources, err := resolveTarget(cmd)
	if err != nil {
		return formatError(err)
	}

	switch args[0] {
	case "cars":
		cars, err := slt.ListCars(sources)
		if err != nil {
			return formatError(err)
		}
		for _, c := range cars {
			year := ""
			if c.Year != nil {
				year = fmt.Sprintf("%d", *c.Year)
			}
			fmt.Printf("%8d  %-40s %-6s [%s]\n", c.ID, c.MediaName, year, filepath.Base(c.Source))
		}
		fmt.Printf("%d car(s)\n", len(cars))
	case "engines":
		engines, err := slt.ListEngines(sources)
		if err != nil {
			return formatError(err)
		}
		for _, e := range engines {
			name := e.Name
			if name == "" {
				name = e.MediaName
			}
			fmt.Printf("%8d  %-40s [%s]\n", e.ID, name, filepath.Base(e.Source))
		}
		fmt.Printf("%d engine(s)\n", len(engines))
	case "lookups":
		cache := slt.BuildLookupCache(sources)
		tables := make([]string, 0, len(cache))
		for table := range cache {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			fmt.Println(table)
			for _, id := range cache.SortedIDs(table) {
				fmt.Printf("  %6d  %s\n", id, cache[table][id])
			}
		}
	case "subsystems":
		db, err := slt.OpenReadOnly(mainPath)
		if err != nil {
			return formatError(err)
		}
		defer db.Close()
		names, err := cloner.SupportedSubsystems(db)
		if err != nil {
			return formatError(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	default:
		return formatError(fmt.Errorf("unsupported list type: %s", args[0]))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}

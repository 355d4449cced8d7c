package internal

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"

	"sltforge/slt"
)

// pickerPageSize keeps long car lists navigable
const pickerPageSize = 15

// PickCar presents an interactive filterable list of cars and returns the
// chosen one. Typing filters on id, name and source file.
func PickCar(cars []slt.CarInfo) (slt.CarInfo, error) {
	if len(cars) == 0 {
		return slt.CarInfo{}, fmt.Errorf("no cars available for selection")
	}

	Logger.Info("Found cars for selection", "count", len(cars))

	options := make([]string, len(cars))
	for i, c := range cars {
		options[i] = formatCarOption(c)
	}

	fmt.Printf("\n📋 Found %d car(s) across sources.\n", len(cars))
	fmt.Println("Use ↑/↓ to navigate, type to filter, ENTER to confirm")

	var idx int
	prompt := &survey.Select{
		Message:  "Select donor car:",
		Options:  options,
		PageSize: pickerPageSize,
	}
	if err := survey.AskOne(prompt, &idx, survey.WithPageSize(pickerPageSize)); err != nil {
		if err.Error() == "interrupt" {
			return slt.CarInfo{}, fmt.Errorf("selection cancelled by user")
		}
		return slt.CarInfo{}, fmt.Errorf("selection error: %w", err)
	}
	return cars[idx], nil
}

// PickEngine is PickCar for engines.
func PickEngine(engines []slt.EngineInfo) (slt.EngineInfo, error) {
	if len(engines) == 0 {
		return slt.EngineInfo{}, fmt.Errorf("no engines available for selection")
	}

	Logger.Info("Found engines for selection", "count", len(engines))

	options := make([]string, len(engines))
	for i, e := range engines {
		options[i] = formatEngineOption(e)
	}

	fmt.Printf("\n📋 Found %d engine(s) across sources.\n", len(engines))
	fmt.Println("Use ↑/↓ to navigate, type to filter, ENTER to confirm")

	var idx int
	prompt := &survey.Select{
		Message:  "Select donor engine:",
		Options:  options,
		PageSize: pickerPageSize,
	}
	if err := survey.AskOne(prompt, &idx, survey.WithPageSize(pickerPageSize)); err != nil {
		if err.Error() == "interrupt" {
			return slt.EngineInfo{}, fmt.Errorf("selection cancelled by user")
		}
		return slt.EngineInfo{}, fmt.Errorf("selection error: %w", err)
	}
	return engines[idx], nil
}

// PickOne presents a plain single-choice list (subsystems, levels).
func PickOne(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing available for selection")
	}
	var choice string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: pickerPageSize,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		if err.Error() == "interrupt" {
			return "", fmt.Errorf("selection cancelled by user")
		}
		return "", fmt.Errorf("selection error: %w", err)
	}
	return choice, nil
}

// Confirm asks a yes/no question.
func Confirm(message string, def bool) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("confirmation error: %w", err)
	}
	return ok, nil
}

func formatCarOption(c slt.CarInfo) string {
	label := fmt.Sprintf("%d", c.ID)
	if c.MediaName != "" {
		label += "  " + c.MediaName
	}
	if c.Year != nil {
		label += fmt.Sprintf(" (%d)", *c.Year)
	}
	return fmt.Sprintf("%s [%s]", label, filepath.Base(c.Source))
}

func formatEngineOption(e slt.EngineInfo) string {
	label := fmt.Sprintf("%d", e.ID)
	if e.Name != "" {
		label += "  " + e.Name
	} else if e.MediaName != "" {
		label += "  " + e.MediaName
	}
	return fmt.Sprintf("%s [%s]", label, filepath.Base(e.Source))
}

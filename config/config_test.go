package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigMethods(t *testing.T) {
	config := &Config{}

	profile := Profile{
		Main:   "/games/fm/MAIN.slt",
		DLCDir: "/games/fm/dlc",
	}

	config.SetProfile("fm", profile)

	retrieved, err := config.GetProfile("fm")
	if err != nil {
		t.Errorf("Unexpected error getting profile: %v", err)
	}

	if *retrieved != profile {
		t.Error("Retrieved profile doesn't match set profile")
	}

	// First profile set becomes the default.
	if config.Default != "fm" {
		t.Errorf("Expected default profile fm, got %s", config.Default)
	}

	byDefault, err := config.GetProfile("")
	if err != nil {
		t.Errorf("Unexpected error getting default profile: %v", err)
	}
	if *byDefault != profile {
		t.Error("Default profile lookup doesn't match set profile")
	}

	_, err = config.GetProfile("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent profile")
	}
}

func TestGetProfileNoDefault(t *testing.T) {
	config := &Config{}

	_, err := config.GetProfile("")
	if err == nil {
		t.Error("Expected error when no default profile is set")
	}
}

func TestProfileNames(t *testing.T) {
	config := &Config{
		Profiles: map[string]Profile{
			"fm":     {Main: "/a/MAIN.slt"},
			"backup": {Main: "/b/MAIN.slt"},
			"test":   {Main: "/c/MAIN.slt"},
		},
	}

	names := config.ProfileNames()

	if len(names) != 3 {
		t.Errorf("Expected 3 profile names, got %d", len(names))
	}

	nameMap := make(map[string]bool)
	for _, name := range names {
		nameMap[name] = true
	}

	if !nameMap["fm"] {
		t.Error("Expected fm in profile names")
	}
}

func TestConfigSerialization(t *testing.T) {
	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "test_config.json")

	config := &Config{
		Profiles: map[string]Profile{
			"fm": {
				Main:   "/games/fm/MAIN.slt",
				DLCDir: "/games/fm/dlc",
			},
		},
		Default: "fm",
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Errorf("Failed to marshal config: %v", err)
	}

	err = os.WriteFile(tempFile, data, 0644)
	if err != nil {
		t.Errorf("Failed to write config file: %v", err)
	}

	readData, err := os.ReadFile(tempFile)
	if err != nil {
		t.Errorf("Failed to read config file: %v", err)
	}

	var loadedConfig Config
	err = json.Unmarshal(readData, &loadedConfig)
	if err != nil {
		t.Errorf("Failed to unmarshal config: %v", err)
	}

	profile, err := loadedConfig.GetProfile("fm")
	if err != nil {
		t.Errorf("Failed to get profile: %v", err)
	}

	if profile.Main != "/games/fm/MAIN.slt" || profile.DLCDir != "/games/fm/dlc" {
		t.Error("Profile data was corrupted during serialization")
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Profile names one game installation: the MAIN database plus an optional
// folder of expansion databases searched for auxiliary sources.
type Profile struct {
	Main   string `json:"main"`
	DLCDir string `json:"dlc_dir,omitempty"`
}

type Config struct {
	Profiles map[string]Profile `json:"profiles"`
	// Default is the profile used when commands are run without --profile.
	Default string `json:"default,omitempty"`
}

func LoadConfig() (*Config, error) {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

func (c *Config) SaveConfig() error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProfile resolves a profile by name; an empty name means the default.
func (c *Config) GetProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return nil, fmt.Errorf("no profile given and no default profile set")
	}
	profile, exists := c.Profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile not found: %s", name)
	}
	return &profile, nil
}

func (c *Config) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
	if c.Default == "" {
		c.Default = name
	}
}

func (c *Config) ProfileNames() []string {
	var names []string
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sltforge/config.json"
	}
	return filepath.Join(homeDir, ".sltforge", "config.json")
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"example": {
				Main:   "/path/to/MAIN.slt",
				DLCDir: "/path/to/dlc",
			},
		},
		Default: "example",
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.SaveConfig(); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	fmt.Printf("Created default config at %s\n", configPath)
	fmt.Println("Please edit the config file to point at your MAIN database.")

	return config, nil
}

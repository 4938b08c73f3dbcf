package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	ListenAddr  string                    `toml:"listen_addr"`
	DatabasePath string                   `toml:"database_path"`
	Collections map[string]CollectionInfo `toml:"collections"`
}

type CollectionInfo struct {
	Enabled bool `toml:"enabled"`
}

func GetDefaultConfig() (*Config, error) {
	dbPath, err := GetDefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting default database path: %w", err)
	}
	return &Config{
		ListenAddr:   ":8787",
		DatabasePath: dbPath,
		Collections:  make(map[string]CollectionInfo),
	}, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8787"
	}

	if config.DatabasePath == "" {
		dbPath, err := GetDefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("getting default database path: %w", err)
		}
		config.DatabasePath = dbPath
	}

	if config.Collections == nil {
		config.Collections = make(map[string]CollectionInfo)
	}

	return &config, nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	dbPath := c.DatabasePath
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return "", fmt.Errorf("getting default database path: %w", err)
		}
	}

	// Replace the placeholder database_path with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/biocat/biocat.db", dbPath, 1)
	return template, nil
}

// CollectionEnabled reports whether a collection should be served. A
// collection absent from the config is enabled; only an explicit
// enabled = false entry turns it off.
func (c *Config) CollectionEnabled(name string) bool {
	info, exists := c.Collections[name]
	if !exists {
		return true
	}
	return info.Enabled
}

func (c *Config) SetCollectionEnabled(name string, enabled bool) {
	if c.Collections == nil {
		c.Collections = make(map[string]CollectionInfo)
	}
	c.Collections[name] = CollectionInfo{Enabled: enabled}
}

func (c *Config) ListCollections() []string {
	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	biocatDir := filepath.Join(dataDir, "biocat")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(biocatDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", biocatDir, err)
	}

	return biocatDir, nil
}

// GetDefaultDBPath returns the default database path in the user's data directory
func GetDefaultDBPath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "biocat.db"), nil
}

// GetConfigDir returns the configuration directory for biocat
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	biocatConfigDir := filepath.Join(configDir, "biocat")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(biocatConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", biocatConfigDir, err)
	}

	return biocatConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

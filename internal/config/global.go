package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "termgraph"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// LocalConfigFile overrides the global config for one project.
	LocalConfigFile = "termgraph.yml"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/termgraph/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LocalConfigPath returns the nearest termgraph.yml at or above dir, or
// the path it would have in dir when there is none. An empty dir means the
// working directory.
func LocalConfigPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	if found, err := FindLocalConfig(dir); err == nil {
		return found
	}
	return filepath.Join(dir, LocalConfigFile)
}

// FindLocalConfig walks up from start looking for termgraph.yml.
func FindLocalConfig(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		candidate := filepath.Join(abs, LocalConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no %s found above %s", LocalConfigFile, start)
		}
		abs = parent
	}
}

// HelpfulConfigMessage explains where configuration comes from when no
// dataset is configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No dataset configured.

Pass --dataset, set %s, or create %s:
  mkdir -p %s
  echo 'dataset: /path/to/glossary.json' > %s

A %s in the working directory overrides the global file.`,
		EnvDataset,
		configPath,
		filepath.Dir(configPath),
		configPath,
		LocalConfigFile)
}

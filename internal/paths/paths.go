// Package paths resolves the configuration and data directories of the
// categories CLI.
//
// Both directories follow the same precedence: an explicit flag, then the
// config file value (data directory only), then an environment variable,
// then a directory named after the tool in the working directory.
package paths

import (
	"os"
	"path/filepath"
)

// Working directory relative defaults.
const (
	DefaultConfigDirName = ".categories"
	DefaultDataDirName   = ".categories-db"
)

// Environment variables overriding the defaults.
const (
	EnvConfigDir = "CATEGORIES_CONFIG_DIR"
	EnvDataDir   = "CATEGORIES_DATA_DIR"
)

// getwd is replaced in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory:
// flag > CATEGORIES_CONFIG_DIR > $(CWD)/.categories.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDirName, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir returns the data directory:
// flag > data_dir from config.yaml > CATEGORIES_DATA_DIR > $(CWD)/.categories-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(DefaultDataDirName, flag, configValue, os.Getenv(EnvDataDir))
}

// resolve returns the first non-empty candidate as an absolute path, or
// defaultName below the working directory.
func resolve(defaultName string, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, defaultName), nil
}

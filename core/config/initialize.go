package config

import (
	"log"
	"os"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration to dir, keeping any existing
// configuration, and loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	logger.Printf("Initializing configuration in %q\n", dir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

// InitializeFs is Initialize for the root of fsys.
func InitializeFs(fsys afero.Fs, logger *log.Logger) (*Configuration, error) {
	exists, err := afero.Exists(fsys, ConfigurationName)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.Printf("- %s already exists, skipping\n", ConfigurationName)
	} else {
		logger.Printf("- writing %s\n", ConfigurationName)
		if err := afero.WriteFile(fsys, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return LoadFs(fsys)
}

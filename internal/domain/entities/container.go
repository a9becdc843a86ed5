package entities

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"
)

// SettingsLoader resolves the settings for one CLI invocation. An empty path means
// "search the default locations, fall back to defaults".
type SettingsLoader func(path string) (*Settings, error)

// LoadSettings is the default SettingsLoader.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			logger.Debugf("No config file found, using defaults: %v", err)
			return NewDefaultSettings(), nil
		}
		path = found
	}
	logger.Debugf("Using config file: %s", path)
	return NewSettings(path)
}

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() SettingsLoader { return LoadSettings })
}

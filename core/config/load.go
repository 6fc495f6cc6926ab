package config

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration file at path. Settings missing from the file
// keep their default values; unknown settings are an error.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	configContents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return out, nil
}

// LoadFromEnv loads the file named by EnvConfig, or the defaults if it isn't
// set.
func LoadFromEnv(fs afero.Fs) (*Configuration, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return Default(), nil
	}
	return Load(fs, path)
}

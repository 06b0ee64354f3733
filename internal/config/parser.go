package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a configuration file from disk, expands ${VAR}
// references from the environment, validates the result, and returns the
// resulting model. A .env file next to the working directory is loaded
// first when present, so secrets never need to live in the YAML itself.
func ParseConfig(path string) (*Config, error) {
	// Missing .env is fine; explicit env vars win over file values.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, syncerrors.NewParseError(path, 0, err)
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, syncerrors.NewParseError(path, extractLine(err), err)
	}

	if cfg.Campai.BaseURL == "" {
		cfg.Campai.BaseURL = DefaultCampaiBaseURL
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}

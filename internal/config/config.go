// Package config resolves runtime settings from the environment and an
// optional env file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultMaxOccurrences = 25
	maxMaxOccurrences     = 100
)

// Runtime holds the resolved configuration.
type Runtime struct {
	// MaxOccurrences caps the expanded occurrence table, clamped to 1..100.
	MaxOccurrences int

	// Timezone anchors floating date-times for ordering. Empty keeps them
	// floating (anchored in UTC).
	Timezone string

	// LogLevel is a logrus level name (default "warn").
	LogLevel string

	// LogFile is where the interactive surface writes its log.
	LogFile string
}

// Load reads CALCONV_* environment variables, optionally seeded from
// $XDG_CONFIG_HOME/calconv/config.env.
func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	_ = loadEnvFile(filepath.Join(xdgConfig, "calconv", "config.env"))

	v := viper.New()
	v.SetEnvPrefix("CALCONV")
	v.AutomaticEnv()

	_ = v.BindEnv("max_occurrences", "CALCONV_MAX_OCCURRENCES")
	_ = v.BindEnv("timezone", "CALCONV_TIMEZONE")
	_ = v.BindEnv("log_level", "CALCONV_LOG_LEVEL")
	_ = v.BindEnv("log_file", "CALCONV_LOG_FILE")

	v.SetDefault("max_occurrences", defaultMaxOccurrences)
	v.SetDefault("timezone", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", filepath.Join(xdgState, "calconv", "calconv.log"))

	maxOccurrences := v.GetInt("max_occurrences")
	if maxOccurrences < 1 {
		maxOccurrences = 1
	}
	if maxOccurrences > maxMaxOccurrences {
		maxOccurrences = maxMaxOccurrences
	}

	return Runtime{
		MaxOccurrences: maxOccurrences,
		Timezone:       strings.TrimSpace(v.GetString("timezone")),
		LogLevel:       strings.TrimSpace(v.GetString("log_level")),
		LogFile:        strings.TrimSpace(v.GetString("log_file")),
	}, nil
}

// loadEnvFile exports KEY=VALUE pairs from a plain env file into the process
// environment, without overriding variables that are already set.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
	return scanner.Err()
}

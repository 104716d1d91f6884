// Package config loads quacker settings with koanf.
// Configuration is loaded with priority: environment variables > project config (.quacker/config.yml)
// > user config (~/.config/quacker/config.yml) > defaults. A legacy JSON project config is still read,
// with a deprecation warning.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "QUACKER_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the quacker settings
type Configuration struct {
	// MaxConcurrency bounds how many sibling checks run at once (0 = unbounded).
	// Can be set via QUACKER_MAX_CONCURRENCY env var.
	MaxConcurrency int `koanf:"max_concurrency" yaml:"max_concurrency" validate:"min=0"`

	// TeardownPolicy is "always" (default) or "on_success".
	TeardownPolicy string `koanf:"teardown_policy" yaml:"teardown_policy" validate:"oneof=always on_success"`

	LogLevel     string `koanf:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Color        string `koanf:"color" yaml:"color" validate:"oneof=auto always never"`
	ReportFormat string `koanf:"report_format" yaml:"report_format" validate:"oneof=text yaml"`

	// Sources records which layer set each key.
	Sources map[string]ConfigSource `koanf:"-" yaml:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .quacker/config.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
	// SkipUserConfig ignores the user-level config file
	SkipUserConfig bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// Config paths:
//   - User config: ~/.config/quacker/config.yml (XDG compliant)
//   - Project config: .quacker/config.yml
//   - Legacy project config: .quacker/config.json (deprecated, triggers a warning)
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)
	sources := make(map[string]ConfigSource)

	loadDefaults(k)
	markSources(k, sources, SourceDefault)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, sources); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, sources, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k, sources); err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k, configLabel(opts.ProjectConfigPath))
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	return cfg, nil
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}
}

// markSources attributes every key currently present in k to source.
func markSources(k *koanf.Koanf, sources map[string]ConfigSource, source ConfigSource) {
	for _, key := range k.Keys() {
		sources[key] = source
	}
}

// loadLayer loads one provider into its own koanf instance, records the
// keys it sets, and merges it into k.
func loadLayer(k *koanf.Koanf, sources map[string]ConfigSource, source ConfigSource, p koanf.Provider, pa koanf.Parser) error {
	layer := koanf.New(".")
	if err := layer.Load(p, pa); err != nil {
		return err
	}
	markSources(layer, sources, source)
	return k.Merge(layer)
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf, sources map[string]ConfigSource) error {
	userYAMLPath, err := UserConfigPath()
	if err != nil || !fileExists(userYAMLPath) {
		return nil
	}
	if err := loadYAMLConfig(k, sources, SourceUser, userYAMLPath); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Supports custom path override. Falls back to legacy JSON with a warning.
func loadProjectConfig(k *koanf.Koanf, sources map[string]ConfigSource, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file %s does not exist", customPath)
		}
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := customPath == "" && fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, sources, SourceProject, projectYAMLPath); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyProjectPath, projectYAMLPath, legacyProjectExists, skipWarnings)
	} else if legacyProjectExists {
		if err := loadLegacyJSONConfig(k, sources, legacyProjectPath, warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, sources map[string]ConfigSource, source ConfigSource, path string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := loadLayer(k, sources, source, file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about the deprecated format
func loadLegacyJSONConfig(k *koanf.Koanf, sources map[string]ConfigSource, path string, warningWriter io.Writer, skipWarnings bool) error {
	if err := loadLayer(k, sources, SourceProject, file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy project config %s: %w", path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Move its settings to %s.\n\n", ProjectConfigPath())
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n\n", legacyPath, yamlPath)
	}
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf, sources map[string]ConfigSource) error {
	if err := loadLayer(k, sources, SourceEnv, env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, normalizes and validates the merged values
func finalizeConfig(k *koanf.Koanf, label string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.TeardownPolicy = normalizeEnum(cfg.TeardownPolicy)
	cfg.LogLevel = normalizeEnum(cfg.LogLevel)
	cfg.Color = normalizeEnum(cfg.Color)
	cfg.ReportFormat = normalizeEnum(cfg.ReportFormat)

	if err := ValidateConfigValues(&cfg, label); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configLabel(customPath string) string {
	if customPath != "" {
		return customPath
	}
	return "config"
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: QUACKER_MAX_CONCURRENCY -> max_concurrency
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// UseColor resolves the color setting against whether output is a terminal.
func (c *Configuration) UseColor(isTerminal bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isTerminal && os.Getenv("NO_COLOR") == ""
}

package config

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeInt ConfigValueType = iota
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key path (e.g., "teardown_policy")
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"max_concurrency": {
		Path:        "max_concurrency",
		Type:        TypeInt,
		Description: "Maximum sibling checks in flight (0 = unbounded)",
		Default:     0,
	},
	"teardown_policy": {
		Path:          "teardown_policy",
		Type:          TypeEnum,
		AllowedValues: []string{"always", "on_success"},
		Description:   "When teardown hooks run after a check",
		Default:       "always",
	},
	"log_level": {
		Path:          "log_level",
		Type:          TypeEnum,
		AllowedValues: []string{"debug", "info", "warn", "error"},
		Description:   "Minimum level of diagnostic log output",
		Default:       "warn",
	},
	"color": {
		Path:          "color",
		Type:          TypeEnum,
		AllowedValues: []string{"auto", "always", "never"},
		Description:   "Colorize terminal output",
		Default:       "auto",
	},
	"report_format": {
		Path:          "report_format",
		Type:          TypeEnum,
		AllowedValues: []string{"text", "yaml"},
		Description:   "Format of failure reports",
		Default:       "text",
	},
}

// ErrUnknownKey is returned when a key is not in the registry.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return fmt.Sprintf("unknown configuration key: %q (run 'quacker config keys' to list keys)", e.Key)
}

// GetKeySchema returns the schema for a configuration key.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known key paths in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatAllowed renders the allowed values of an enum key, or the type name otherwise.
func (s ConfigKeySchema) FormatAllowed() string {
	if s.Type == TypeEnum {
		return strings.Join(s.AllowedValues, " | ")
	}
	return s.Type.String()
}

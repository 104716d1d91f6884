package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# Quacker Configuration
# See 'quacker config keys' for all options

# Verification settings
max_concurrency: 0                    # Max sibling checks in flight (0 = unbounded)
teardown_policy: always               # When teardown hooks run: always | on_success

# Output settings
log_level: warn                       # debug | info | warn | error
color: auto                           # auto | always | never
report_format: text                   # Failure report format: text | yaml
`
}

// GetDefaults returns the default configuration values keyed by config path.
func GetDefaults() map[string]interface{} {
	defaults := make(map[string]interface{}, len(KnownKeys))
	for path, schema := range KnownKeys {
		defaults[path] = schema.Default
	}
	return defaults
}

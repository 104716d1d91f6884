package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the quacker CLI.

// UnknownContract creates an error for a contract name not in the catalog.
func UnknownContract(name string, available []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown contract: %s", name),
		"quacker check [contract...]",
		"Available contracts: "+strings.Join(available, ", "),
		"Run 'quacker list' to see every contract with its description",
	)
}

// ConfigLoadFailed creates an error for configuration that could not be loaded.
func ConfigLoadFailed(err error) *CLIError {
	return WrapWithMessage(err, Configuration, "failed to load configuration",
		"Check .quacker/config.yml and ~/.config/quacker/config.yml",
		"Run 'quacker config keys' to see valid keys and values",
	)
}

// ContractsFailed creates an error summarizing failed contract checks.
func ContractsFailed(failed, total int) *CLIError {
	return &CLIError{
		Category: Verification,
		Message:  fmt.Sprintf("%d of %d contracts failed", failed, total),
	}
}

// UnknownConfigKey creates an error for a key outside the config registry.
func UnknownConfigKey(err error) *CLIError {
	return Wrap(err, Argument, "Run 'quacker config keys' to list keys")
}

package config

import (
	"io"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/internal/telemetry"
)

// ContractOptions converts the configuration into verification options.
// Log records at or above LogLevel are written to logOutput as text.
func (c *Configuration) ContractOptions(logOutput io.Writer) (contract.Options, error) {
	policy, err := contract.ParseTeardownPolicy(c.TeardownPolicy)
	if err != nil {
		return contract.Options{}, err
	}
	logger, err := telemetry.NewLogger(logOutput, c.LogLevel)
	if err != nil {
		return contract.Options{}, err
	}
	return contract.Options{
		MaxConcurrency: c.MaxConcurrency,
		TeardownPolicy: policy,
		Logger:         logger,
	}, nil
}

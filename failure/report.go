package failure

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Report is a structured, serializable view of a verification failure for
// diagnostic tooling.
type Report struct {
	Failures []Entry `yaml:"failures"`
}

// Entry describes one leaf failure.
type Entry struct {
	Category  string `yaml:"category"`
	Path      string `yaml:"path,omitempty"`
	Verifier  string `yaml:"verifier,omitempty"`
	Cause     string `yaml:"cause"`
	Candidate string `yaml:"candidate,omitempty"`
	Message   string `yaml:"message"`
}

// NewReport builds a report with one entry per leaf failure of err.
func NewReport(err error) *Report {
	r := &Report{}
	for _, leaf := range Leaves(err) {
		entry := Entry{
			Category: CategoryOf(leaf).String(),
			Path:     JoinBreadcrumbs(BreadcrumbsOf(leaf)),
			Cause:    causeMessage(Cause(leaf)),
			Message:  leaf.Error(),
		}
		var vf *VerifierFailure
		if errors.As(leaf, &vf) {
			entry.Verifier = fmt.Sprintf("%s '%s'", vf.Kind, vf.Title)
		}
		if candidate, ok := CandidateOf(leaf); ok {
			entry.Candidate = fmt.Sprintf("%#v", candidate)
		}
		r.Failures = append(r.Failures, entry)
	}
	return r
}

// Len returns the number of leaf failures in the report.
func (r *Report) Len() int {
	return len(r.Failures)
}

// YAML marshals the report.
func (r *Report) YAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling failure report to YAML: %w", err)
	}
	return data, nil
}

package shared

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Jobs file validation errors.
var (
	ErrNoJobs        = errors.New("at least one job is required")
	ErrJobMissingURL = errors.New("url is required")
	ErrNegativeLimit = errors.New("limit must be non-negative")
)

// JobsFile is the batch exporter's input: one entry per storefront URL.
type JobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

// Job describes one export. Country, lang, and limit fall back to the
// service defaults when omitted.
type Job struct {
	URL     string `yaml:"url"`
	Country string `yaml:"country"`
	Lang    string `yaml:"lang"`
	Limit   int    `yaml:"limit"`
}

// LoadJobs loads a YAML jobs file and validates it.
func LoadJobs(path string) (*JobsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	var jf JobsFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := jf.Validate(); err != nil {
		return nil, fmt.Errorf("jobs file validation failed: %w", err)
	}

	return &jf, nil
}

// Validate validates the jobs file.
func (f *JobsFile) Validate() error {
	if len(f.Jobs) == 0 {
		return ErrNoJobs
	}

	for i, j := range f.Jobs {
		if j.URL == "" {
			return fmt.Errorf("%w: jobs[%d]", ErrJobMissingURL, i)
		}

		if j.Limit < 0 {
			return fmt.Errorf("%w: jobs[%d]", ErrNegativeLimit, i)
		}
	}

	return nil
}

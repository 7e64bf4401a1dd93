package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainEntry is one manifest entry: the source files for a single domain
// plus the metadata that becomes its Domain record.
type DomainEntry struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Priority         int    `yaml:"priority"`
	Prefix           string `yaml:"prefix"`
	PrinciplesPath   string `yaml:"principles_path"`
	MethodsPath      string `yaml:"methods_path"`
}

// Manifest is the corpus manifest: domain name -> source configuration.
type Manifest struct {
	Domains []DomainEntry `yaml:"domains"`
}

// LoadManifest reads and parses a manifest YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the manifest invariants spec.md §4.3 step 1 requires:
// every referenced path exists, prefixes are unique, priorities are
// distinct. All violations are collected, not just the first.
func (m *Manifest) Validate(baseDir string) error {
	var errs []error
	seenPrefix := make(map[string]string)
	seenPriority := make(map[int]string)

	for _, d := range m.Domains {
		if d.Prefix == "" {
			errs = append(errs, fmt.Errorf("domain %q: empty prefix", d.Name))
		} else if existing, ok := seenPrefix[d.Prefix]; ok {
			errs = append(errs, fmt.Errorf("domain %q: prefix %q already used by domain %q", d.Name, d.Prefix, existing))
		} else {
			seenPrefix[d.Prefix] = d.Name
		}

		if existing, ok := seenPriority[d.Priority]; ok {
			errs = append(errs, fmt.Errorf("domain %q: priority %d already used by domain %q", d.Name, d.Priority, existing))
		} else {
			seenPriority[d.Priority] = d.Name
		}

		for _, p := range []string{d.PrinciplesPath, d.MethodsPath} {
			if p == "" {
				continue
			}
			full := joinIfRelative(baseDir, p)
			if _, err := os.Stat(full); err != nil {
				errs = append(errs, fmt.Errorf("domain %q: missing source file %s", d.Name, full))
			}
		}
	}

	if len(errs) > 0 {
		return &ExtractorConfigError{Errors: errs}
	}
	return nil
}

// ExtractorConfigError aggregates every manifest validation failure so the
// caller sees the whole problem set, not just the first file that is missing.
type ExtractorConfigError struct {
	Errors []error
}

func (e *ExtractorConfigError) Error() string {
	msg := fmt.Sprintf("corpus manifest invalid (%d problems):", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

func joinIfRelative(baseDir, p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p
	}
	return baseDir + "/" + p
}

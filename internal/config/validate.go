package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInclude indicates an empty include pattern list
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidMaxFileSize indicates a zero or negative size limit
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrConflictingPattern indicates the same literal pattern in include and exclude
	ErrConflictingPattern = errors.New("conflicting include/exclude pattern")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, p := range cfg.Include {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%w: include pattern is blank", ErrInvalidPattern))
			continue
		}
		if _, err := CompilePattern(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: include %q: %v", ErrInvalidPattern, p, err))
		}
	}

	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, p := range cfg.Exclude {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%w: exclude pattern is blank", ErrInvalidPattern))
			continue
		}
		if _, err := CompilePattern(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: exclude %q: %v", ErrInvalidPattern, p, err))
		}
		excluded[p] = true
	}

	for _, p := range cfg.Include {
		if excluded[p] {
			errs = append(errs, fmt.Errorf("%w: %q is both included and excluded", ErrConflictingPattern, p))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtraction(cfg *ExtractionConfig) error {
	var errs []error

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidMaxFileSize, cfg.MaxFileSize))
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// validationError joins several validation failures while keeping each one
// reachable through errors.Is.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	// Flatten nested validation errors so the message stays one level deep.
	var flat []error
	for _, err := range errs {
		var ve *validationError
		if errors.As(err, &ve) {
			flat = append(flat, ve.errs...)
			continue
		}
		flat = append(flat, err)
	}

	return &validationError{errs: flat}
}

package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "process.group_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"json", "text"}
}

// ValidOutputFormats returns the list of valid result encodings
func ValidOutputFormats() []string {
	return []string{"json", "yaml", "cbor"}
}

// ValidGenerators returns the list of opinion generators
func ValidGenerators() []string {
	return []string{"random", "polarized", "mixed", "incoherent", "greedy", "uniform_greedy"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePopulation()...)
	errors = append(errors, c.validateProcess()...)
	errors = append(errors, c.validateExperiment()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func oneOf(field, value string, valid []string) []ValidationError {
	if slices.Contains(valid, value) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}

func probability(field string, p float64) []ValidationError {
	if p >= 0 && p <= 1 {
		return nil
	}
	return []ValidationError{{Field: field, Value: p, Message: "must be between 0 and 1"}}
}

func (c *Config) validatePopulation() []ValidationError {
	var errors []ValidationError
	p := c.Population

	if p.Stakeholders < 1 {
		errors = append(errors, ValidationError{
			Field:   "population.stakeholders",
			Value:   p.Stakeholders,
			Message: "must be at least 1",
		})
	}
	if p.Issues < 1 {
		errors = append(errors, ValidationError{
			Field:   "population.issues",
			Value:   p.Issues,
			Message: "must be at least 1",
		})
	}
	errors = append(errors, oneOf("population.generator", p.Generator, ValidGenerators())...)
	errors = append(errors, probability("population.inform", p.Inform)...)
	errors = append(errors, probability("population.polarization", p.Polarization)...)
	errors = append(errors, probability("population.link_probability", p.LinkProbability)...)
	errors = append(errors, probability("population.negative_probability", p.NegativeProbability)...)
	if !(p.Sigma > 0) || math.IsInf(p.Sigma, 1) {
		errors = append(errors, ValidationError{
			Field:   "population.sigma",
			Value:   p.Sigma,
			Message: "must be positive and finite",
		})
	}

	return errors
}

func (c *Config) validateProcess() []ValidationError {
	var errors []ValidationError
	p := c.Process

	if p.GroupSize < 2 {
		errors = append(errors, ValidationError{
			Field:   "process.group_size",
			Value:   p.GroupSize,
			Message: "must be at least 2",
		})
	}
	if p.GroupOverlap < 0 || p.GroupOverlap > p.GroupSize {
		errors = append(errors, ValidationError{
			Field:   "process.group_overlap",
			Value:   p.GroupOverlap,
			Message: fmt.Sprintf("must be between 0 and group_size (%d)", p.GroupSize),
		})
	}
	errors = append(errors, oneOf("process.decision", p.Decision, []string{"random", "sentiment", "degree", "snowball"})...)
	errors = append(errors, oneOf("process.group", p.Group, []string{"random", "star"})...)
	errors = append(errors, oneOf("process.resolver", p.Resolver, []string{"average", "star"})...)
	errors = append(errors, oneOf("process.updater", p.Updater, []string{"average", "star"})...)

	return errors
}

func (c *Config) validateExperiment() []ValidationError {
	var errors []ValidationError

	if c.Experiment.Runs < 1 {
		errors = append(errors, ValidationError{
			Field:   "experiment.runs",
			Value:   c.Experiment.Runs,
			Message: "must be at least 1",
		})
	}
	if c.Experiment.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "experiment.workers",
			Value:   c.Experiment.Workers,
			Message: "must be non-negative (0 = one per run)",
		})
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	return oneOf("output.format", c.Output.Format, ValidOutputFormats())
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError
	errors = append(errors, oneOf("logging.level", strings.ToLower(c.Logging.Level), ValidLogLevels())...)
	errors = append(errors, oneOf("logging.format", strings.ToLower(c.Logging.Format), ValidLogFormats())...)
	return errors
}

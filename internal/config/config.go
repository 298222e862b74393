// Package config holds the experiment configuration for the governance CLI.
// Values come from, in increasing precedence: defaults, a YAML config file,
// GOVERNANCE_* environment variables and command-line flags, merged by viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nwlandry/governance/governance"
)

// EnvPrefix is the prefix of every environment variable read by viper.
const EnvPrefix = "GOVERNANCE"

// Config represents the complete governance experiment configuration
type Config struct {
	Seed       int64            `mapstructure:"seed" yaml:"seed"`
	Population PopulationConfig `mapstructure:"population" yaml:"population"`
	Process    ProcessConfig    `mapstructure:"process" yaml:"process"`
	Experiment ExperimentConfig `mapstructure:"experiment" yaml:"experiment"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// PopulationConfig describes how the initial opinions and the relationship
// matrix are generated.
type PopulationConfig struct {
	// Stakeholders is N, the number of rows of the opinion matrix
	Stakeholders int `mapstructure:"stakeholders" yaml:"stakeholders"`
	// Issues is D, the number of policy issues
	Issues int `mapstructure:"issues" yaml:"issues"`
	// Generator selects the opinion generator.
	// Options: "random", "polarized", "mixed", "incoherent", "greedy", "uniform_greedy"
	Generator string `mapstructure:"generator" yaml:"generator"`
	// Inform is the probability that a stakeholder is uninformed (polarized, mixed)
	Inform float64 `mapstructure:"inform" yaml:"inform"`
	// Polarization is the probability that an informed stakeholder follows
	// the preference vector rather than opposing it (polarized, mixed)
	Polarization float64 `mapstructure:"polarization" yaml:"polarization"`
	// Sigma is the spread of truncated-normal opinions
	Sigma float64 `mapstructure:"sigma" yaml:"sigma"`
	// LinkProbability is the chance that two issues are related
	LinkProbability float64 `mapstructure:"link_probability" yaml:"link_probability"`
	// NegativeProbability is the chance that a relationship is contradictory
	NegativeProbability float64 `mapstructure:"negative_probability" yaml:"negative_probability"`
}

// ProcessConfig selects the governance strategies and group parameters.
type ProcessConfig struct {
	GroupSize    int `mapstructure:"group_size" yaml:"group_size"`
	GroupOverlap int `mapstructure:"group_overlap" yaml:"group_overlap"`
	// Decision options: "random", "sentiment", "degree", "snowball"
	Decision string `mapstructure:"decision" yaml:"decision"`
	// Group options: "random", "star"
	Group string `mapstructure:"group" yaml:"group"`
	// Resolver options: "average", "star"
	Resolver string `mapstructure:"resolver" yaml:"resolver"`
	// Updater options: "average", "star"
	Updater string `mapstructure:"updater" yaml:"updater"`
	// StrictPopulation fails a run instead of shrinking a group
	StrictPopulation bool `mapstructure:"strict_population" yaml:"strict_population"`
}

// ExperimentConfig controls Monte Carlo repetition.
type ExperimentConfig struct {
	Runs    int `mapstructure:"runs" yaml:"runs"`
	Workers int `mapstructure:"workers" yaml:"workers,omitempty"`
}

// OutputConfig controls where results go.
type OutputConfig struct {
	// Format options: "json", "yaml", "cbor"
	Format string `mapstructure:"format" yaml:"format"`
	// Path is the output file; empty means stdout
	Path string `mapstructure:"path" yaml:"path"`
	// Database is the SQLite results database; empty disables persistence
	Database string `mapstructure:"database" yaml:"database"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level options: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Format options: "json", "text"
	Format string `mapstructure:"format" yaml:"format"`
	// File is the log file; empty means stderr
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Seed: 1,
		Population: PopulationConfig{
			Stakeholders:        100,
			Issues:              10,
			Generator:           "random",
			Inform:              0.1,
			Polarization:        0.5,
			Sigma:               0.1,
			LinkProbability:     0.3,
			NegativeProbability: 0.5,
		},
		Process: ProcessConfig{
			GroupSize:    governance.DefaultGroupSize,
			GroupOverlap: governance.DefaultGroupOverlap,
			Decision:     governance.DecisionRandom,
			Group:        governance.GroupRandom,
			Resolver:     governance.ResolveAverage,
			Updater:      governance.UpdateAverage,
		},
		Experiment: ExperimentConfig{
			Runs:    100,
			Workers: 0,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// SetDefaults registers every default with v so that unset keys unmarshal
// to Default() values.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("seed", d.Seed)

	v.SetDefault("population.stakeholders", d.Population.Stakeholders)
	v.SetDefault("population.issues", d.Population.Issues)
	v.SetDefault("population.generator", d.Population.Generator)
	v.SetDefault("population.inform", d.Population.Inform)
	v.SetDefault("population.polarization", d.Population.Polarization)
	v.SetDefault("population.sigma", d.Population.Sigma)
	v.SetDefault("population.link_probability", d.Population.LinkProbability)
	v.SetDefault("population.negative_probability", d.Population.NegativeProbability)

	v.SetDefault("process.group_size", d.Process.GroupSize)
	v.SetDefault("process.group_overlap", d.Process.GroupOverlap)
	v.SetDefault("process.decision", d.Process.Decision)
	v.SetDefault("process.group", d.Process.Group)
	v.SetDefault("process.resolver", d.Process.Resolver)
	v.SetDefault("process.updater", d.Process.Updater)
	v.SetDefault("process.strict_population", d.Process.StrictPopulation)

	v.SetDefault("experiment.runs", d.Experiment.Runs)
	v.SetDefault("experiment.workers", d.Experiment.Workers)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.database", d.Output.Database)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
}

// Init prepares v: defaults, config file (if any) and GOVERNANCE_* env.
// A missing explicit config file is an error; a config file found nowhere
// on the search path is not.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("governance")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/governance")
	}

	v.SetEnvPrefix(EnvPrefix)
	// e.g. GOVERNANCE_PROCESS_GROUP_SIZE for process.group_size
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Options translates the process section into engine options.
// Strategy names have already been checked by Validate, but are re-parsed
// here so the engine's own errors surface if they ever disagree.
func (c *Config) Options() ([]governance.Option, error) {
	d, err := governance.ParseDecisionSelector(c.Process.Decision)
	if err != nil {
		return nil, err
	}
	g, err := governance.ParseGroupSelector(c.Process.Group)
	if err != nil {
		return nil, err
	}
	r, err := governance.ParseDecisionResolver(c.Process.Resolver)
	if err != nil {
		return nil, err
	}
	u, err := governance.ParseOpinionUpdater(c.Process.Updater)
	if err != nil {
		return nil, err
	}

	opts := []governance.Option{
		governance.WithGroupSize(c.Process.GroupSize),
		governance.WithGroupOverlap(c.Process.GroupOverlap),
		governance.WithDecisionSelector(d),
		governance.WithGroupSelector(g),
		governance.WithDecisionResolver(r),
		governance.WithOpinionUpdater(u),
	}
	if c.Process.StrictPopulation {
		opts = append(opts, governance.WithStrictPopulation())
	}
	return opts, nil
}

// MarshalExperiment returns the YAML form of every setting that affects
// simulation results. Output, logging and the worker count are left out, so
// two batches that differ only in those produce identical bytes.
func (c *Config) MarshalExperiment() ([]byte, error) {
	exp := c.Experiment
	exp.Workers = 0
	doc := struct {
		Seed       int64            `yaml:"seed"`
		Population PopulationConfig `yaml:"population"`
		Process    ProcessConfig    `yaml:"process"`
		Experiment ExperimentConfig `yaml:"experiment"`
	}{c.Seed, c.Population, c.Process, exp}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal experiment config: %w", err)
	}
	return out, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nwlandry/governance/internal/config"
	"github.com/nwlandry/governance/internal/export"
	"github.com/nwlandry/governance/internal/logging"
	"github.com/nwlandry/governance/internal/store"
)

// app is the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"seed":                 "seed",
	"stakeholders":         "population.stakeholders",
	"issues":               "population.issues",
	"generator":            "population.generator",
	"inform":               "population.inform",
	"polarization":         "population.polarization",
	"sigma":                "population.sigma",
	"link-probability":     "population.link_probability",
	"negative-probability": "population.negative_probability",
	"group-size":           "process.group_size",
	"overlap":              "process.group_overlap",
	"decision":             "process.decision",
	"group":                "process.group",
	"resolver":             "process.resolver",
	"updater":              "process.updater",
	"strict":               "process.strict_population",
	"format":               "output.format",
	"out":                  "output.path",
	"db":                   "output.database",
	"log-level":            "logging.level",
	"log-format":           "logging.format",
	"log-file":             "logging.file",
}

// execute runs the command line args and releases the log file afterwards.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{v: viper.New()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.closeLog != nil {
		err = errors.Join(err, a.closeLog())
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "governance",
		Short: "Simulate multi-stakeholder governance processes",
		Long: `governance simulates a population of stakeholders deciding a set of
interrelated policy issues one at a time. Each round an issue is selected,
a small decision group is drawn, the group resolves the issue For or Against,
and opinions move toward the decision.

Settings come from defaults, a YAML config file, GOVERNANCE_* environment
variables and flags, in increasing precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	d := config.Default()
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./governance.yaml or $HOME/.config/governance/governance.yaml)")
	pf.Int64("seed", d.Seed, "random seed")

	pf.Int("stakeholders", d.Population.Stakeholders, "number of stakeholders")
	pf.Int("issues", d.Population.Issues, "number of issues")
	pf.String("generator", d.Population.Generator, "opinion generator ("+strings.Join(config.ValidGenerators(), ", ")+")")
	pf.Float64("inform", d.Population.Inform, "probability that a stakeholder is uninformed")
	pf.Float64("polarization", d.Population.Polarization, "probability that an informed stakeholder follows the preferences")
	pf.Float64("sigma", d.Population.Sigma, "spread of generated opinions")
	pf.Float64("link-probability", d.Population.LinkProbability, "probability that two issues are related")
	pf.Float64("negative-probability", d.Population.NegativeProbability, "probability that a relationship is contradictory")

	pf.Int("group-size", d.Process.GroupSize, "decision group size")
	pf.Int("overlap", d.Process.GroupOverlap, "members drawn from earlier groups")
	pf.String("decision", d.Process.Decision, "decision selector (random, sentiment, degree, snowball)")
	pf.String("group", d.Process.Group, "group selector (random, star)")
	pf.String("resolver", d.Process.Resolver, "decision resolver (average, star)")
	pf.String("updater", d.Process.Updater, "opinion updater (average, star)")
	pf.Bool("strict", d.Process.StrictPopulation, "fail instead of shrinking groups when the population runs out")

	pf.String("format", d.Output.Format, "output format ("+strings.Join(config.ValidOutputFormats(), ", ")+")")
	pf.StringP("out", "o", d.Output.Path, "output file; its extension picks the format unless --format is set, .zst compresses (default stdout)")
	pf.String("db", d.Output.Database, "SQLite results database")

	pf.String("log-level", d.Logging.Level, "log level (debug, info, warn, error)")
	pf.String("log-format", d.Logging.Format, "log format (json, text)")
	pf.String("log-file", d.Logging.File, "log file (default stderr)")

	bindFlags(a.v, pf, flagKeys)

	root.AddCommand(
		newRunCmd(a),
		newMonteCarloCmd(a),
		newGenerateCmd(a),
		newExperimentsCmd(a),
		newVersionCmd(),
	)
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// setup loads the configuration and opens the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	e, err := config.ParseEnv()
	if err != nil {
		return err
	}
	flagged := *cfg
	e.Apply(cfg)
	// Explicit flags beat the process environment.
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("db") {
		cfg.Output.Database = flagged.Output.Database
	}
	if changed("log-level") {
		cfg.Logging.Level = flagged.Logging.Level
	}
	if changed("log-format") {
		cfg.Logging.Format = flagged.Logging.Format
	}
	if changed("log-file") {
		cfg.Logging.File = flagged.Logging.File
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return config.ValidationErrors(errs)
	}
	a.cfg = cfg

	if cfg.Logging.File == "" {
		a.log = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		return nil
	}
	a.log, a.closeLog, err = logging.Open(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	return err
}

// openStore opens the configured results database, or returns nil when
// persistence is disabled.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Output.Database == "" {
		return nil, nil
	}
	st, err := store.Open(a.cfg.Output.Database)
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	return st, nil
}

// write encodes doc to the configured output path, or to stdout.
func (a *app) write(cmd *cobra.Command, doc any) (err error) {
	f, err := export.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	path := a.cfg.Output.Path
	if path == "" {
		return export.Encode(cmd.OutOrStdout(), f, false, doc)
	}
	inferred, compress := export.FormatForPath(path, f)
	if !a.formatExplicit(cmd) {
		f = inferred
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	if err = export.Encode(file, f, compress, doc); err != nil {
		return err
	}
	a.log.Info("result written", slog.String("path", path), slog.String("format", string(f)))
	return nil
}

// formatExplicit reports whether output.format came from a flag, the config
// file or the environment rather than the default. Otherwise the --out
// extension picks the format.
func (a *app) formatExplicit(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("format") || a.v.InConfig("output.format") {
		return true
	}
	_, ok := os.LookupEnv(config.EnvPrefix + "_OUTPUT_FORMAT")
	return ok
}

package contract

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/huangsam/culprit/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MinPrecision     = 1
	MaxPrecision     = 2
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// AdapterInput names one registered adapter and the input files given for it.
type AdapterInput struct {
	Adapter string   // Registered adapter name
	Files   []string // Input files in flag order
	Prefix  string   // Optional path prefix stripped before key normalization
}

// Config holds the runtime configuration for an attribution run.
// This struct remains the "final, validated" config.
type Config struct {
	Analyzers []AdapterInput // Analyzer inputs in registry order
	Repos     []AdapterInput // Repo inputs in registry order

	Rawdata    bool
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	// Aliases maps raw author identities to canonical names, applied while
	// building blame indexes.
	Aliases map[string]string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Version string   // Tool version recorded in the summary
	Args    []string // Invocation args recorded in the summary

	UseEmojis bool // Enable emojis in run headers
	UseColors bool // Enable colored labels in table output
}

// AuthorsRawInput holds author identity settings from the YAML config file.
type AuthorsRawInput struct {
	Aliases map[string]string `mapstructure:"aliases"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are collected manually from the per-adapter flags, so no tags
	AnalyzerFiles   map[string][]string
	RepoFiles       map[string][]string
	AdapterPrefixes map[string]string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from attributeCmd.Flags() ---
	Rawdata bool `mapstructure:"rawdata"`

	// --- Author aliases from config file ---
	Authors AuthorsRawInput `mapstructure:"authors"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Analyzers != nil {
		clone.Analyzers = cloneAdapterInputs(c.Analyzers)
	}
	if c.Repos != nil {
		clone.Repos = cloneAdapterInputs(c.Repos)
	}
	if c.Aliases != nil {
		clone.Aliases = make(map[string]string, len(c.Aliases))
		maps.Copy(clone.Aliases, c.Aliases)
	}
	if c.Args != nil {
		clone.Args = make([]string, len(c.Args))
		copy(clone.Args, c.Args)
	}
	return &clone
}

func cloneAdapterInputs(inputs []AdapterInput) []AdapterInput {
	out := make([]AdapterInput, len(inputs))
	for i, in := range inputs {
		out[i] = in
		out[i].Files = make([]string, len(in.Files))
		copy(out[i].Files, in.Files)
	}
	return out
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Adapter names are supplied in registry
// order so index probing stays deterministic regardless of flag order.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, analyzerOrder, repoOrder []string) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := ProcessAndValidateBase(cfg, input); err != nil {
		return err
	}
	return processAdapterInputs(cfg, input, analyzerOrder, repoOrder)
}

// ProcessAndValidateBase validates everything except adapter inputs, for
// entry points like the MCP server that receive inputs per request
// instead of from flags.
func ProcessAndValidateBase(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processOutputMode(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	processAuthorAliases(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return errors.New("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return errors.New("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return errors.New("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return errors.New("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// RevalidateAttribution re-checks adapter inputs assembled outside the
// normal flag flow, as when an MCP tool call supplies them directly.
func RevalidateAttribution(cfg *Config) error {
	if len(cfg.Analyzers) == 0 && len(cfg.Repos) == 0 {
		return errors.New("no analyzer or repo input given")
	}
	for _, input := range cfg.Analyzers {
		if input.Adapter == "" {
			return errors.New("analyzer is required")
		}
		for _, file := range input.Files {
			if file == "" {
				return fmt.Errorf("input file is required for analyzer %s", input.Adapter)
			}
		}
	}
	for _, input := range cfg.Repos {
		if input.Adapter == "" {
			return errors.New("repo is required")
		}
		for _, file := range input.Files {
			if file == "" {
				return fmt.Errorf("input file is required for repo %s", input.Adapter)
			}
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-adapter fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision Validation ---
	if input.Precision < MinPrecision || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be %d or %d (received %d)", MinPrecision, MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	return nil
}

// processOutputMode resolves the output format against the pipeline mode.
// Raw and summary runs accept different format sets, so validation happens
// only after --rawdata is known.
func processOutputMode(cfg *Config, input *ConfigRawInput) error {
	cfg.Rawdata = input.Rawdata

	mode := schema.OutputMode(strings.ToLower(input.Output))
	if mode == "" {
		cfg.Output = schema.DefaultOutputMode(cfg.Rawdata)
		return nil
	}

	if cfg.Rawdata {
		if _, ok := schema.ValidRawModes[mode]; !ok {
			return fmt.Errorf("invalid output format '%s' for rawdata. must be tsv, parquet", input.Output)
		}
	} else {
		if _, ok := schema.ValidSummaryModes[mode]; !ok {
			return fmt.Errorf("invalid output format '%s'. must be text, json, yaml, csv", input.Output)
		}
	}
	if mode == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	cfg.Output = mode
	return nil
}

// processAdapterInputs collects the per-adapter file lists into cfg in
// registry order. A sub-option given without its adapter's input file is a
// usage error, as is a run with no input files at all.
func processAdapterInputs(cfg *Config, input *ConfigRawInput, analyzerOrder, repoOrder []string) error {
	total := 0

	collect := func(order []string, files map[string][]string) ([]AdapterInput, error) {
		var inputs []AdapterInput
		for _, name := range order {
			given := files[name]
			prefix := input.AdapterPrefixes[name]
			if len(given) == 0 {
				if prefix != "" {
					return nil, fmt.Errorf("--%s-prefix given without any --%s input file", name, name)
				}
				continue
			}
			inputs = append(inputs, AdapterInput{Adapter: name, Files: given, Prefix: prefix})
			total += len(given)
		}
		return inputs, nil
	}

	analyzers, err := collect(analyzerOrder, input.AnalyzerFiles)
	if err != nil {
		return err
	}
	repos, err := collect(repoOrder, input.RepoFiles)
	if err != nil {
		return err
	}

	if total == 0 {
		return errors.New("no analyzer or repo input given. supply at least one --<adapter> file (see culprit adapters)")
	}

	cfg.Analyzers = analyzers
	cfg.Repos = repos
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processAuthorAliases copies the alias map from the config file.
func processAuthorAliases(cfg *Config, input *ConfigRawInput) {
	if len(input.Authors.Aliases) == 0 {
		return
	}
	cfg.Aliases = make(map[string]string, len(input.Authors.Aliases))
	maps.Copy(cfg.Aliases, input.Authors.Aliases)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

package contract

import (
	"testing"

	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAnalyzerOrder = []string{"pylint", "flake8", "lines"}
	testRepoOrder     = []string{"git", "svn"}
)

// validInput returns a raw input that passes validation with one analyzer file.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		AnalyzerFiles:  map[string][]string{"pylint": {"report.txt"}},
		RepoFiles:      map[string][]string{},
		Precision:      DefaultPrecision,
		Emoji:          "yes",
		Color:          "yes",
		HistoryBackend: string(schema.NoneBackend),
	}
}

func TestProcessAndValidateMinimal(t *testing.T) {
	cfg := &Config{}
	input := validInput()

	require.NoError(t, ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder))

	assert.Equal(t, schema.TextOut, cfg.Output, "summary runs default to text output")
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
	require.Len(t, cfg.Analyzers, 1)
	assert.Equal(t, "pylint", cfg.Analyzers[0].Adapter)
	assert.Equal(t, []string{"report.txt"}, cfg.Analyzers[0].Files)
	assert.Empty(t, cfg.Repos)
	assert.True(t, cfg.UseColors)
	assert.True(t, cfg.UseEmojis)
}

func TestProcessAndValidateRawdataDefault(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Rawdata = true

	require.NoError(t, ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder))
	assert.Equal(t, schema.TSVOut, cfg.Output, "raw runs default to tsv output")
}

func TestProcessAndValidateParquetOutput(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Rawdata = true
	input.Output = "parquet"
	input.OutputFile = "run.parquet"

	require.NoError(t, ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder))
	assert.Equal(t, schema.ParquetOut, cfg.Output)
	assert.Equal(t, "run.parquet", cfg.OutputFile)
}

func TestProcessAndValidateAdapterOrder(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	// Map insertion order must not matter; registry order does.
	input.AnalyzerFiles = map[string][]string{
		"lines":  {"c.tsv"},
		"pylint": {"a.txt"},
		"flake8": {"b.txt"},
	}
	input.RepoFiles = map[string][]string{
		"svn": {"s.txt"},
		"git": {"g.txt", "g2.txt"},
	}

	require.NoError(t, ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder))

	require.Len(t, cfg.Analyzers, 3)
	assert.Equal(t, "pylint", cfg.Analyzers[0].Adapter)
	assert.Equal(t, "flake8", cfg.Analyzers[1].Adapter)
	assert.Equal(t, "lines", cfg.Analyzers[2].Adapter)

	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, "git", cfg.Repos[0].Adapter)
	assert.Equal(t, []string{"g.txt", "g2.txt"}, cfg.Repos[0].Files)
	assert.Equal(t, "svn", cfg.Repos[1].Adapter)
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantErr string
	}{
		{
			name:    "precision too low",
			mutate:  func(in *ConfigRawInput) { in.Precision = 0 },
			wantErr: "precision",
		},
		{
			name:    "precision too high",
			mutate:  func(in *ConfigRawInput) { in.Precision = 3 },
			wantErr: "precision",
		},
		{
			name:    "bad color value",
			mutate:  func(in *ConfigRawInput) { in.Color = "maybe" },
			wantErr: "--color",
		},
		{
			name:    "bad emoji value",
			mutate:  func(in *ConfigRawInput) { in.Emoji = "sometimes" },
			wantErr: "--emoji",
		},
		{
			name:    "raw format in summary mode",
			mutate:  func(in *ConfigRawInput) { in.Output = "tsv" },
			wantErr: "invalid output format",
		},
		{
			name: "summary format in raw mode",
			mutate: func(in *ConfigRawInput) {
				in.Rawdata = true
				in.Output = "text"
			},
			wantErr: "rawdata",
		},
		{
			name: "parquet without output file",
			mutate: func(in *ConfigRawInput) {
				in.Rawdata = true
				in.Output = "parquet"
			},
			wantErr: "--output-file is required",
		},
		{
			name: "prefix without input file",
			mutate: func(in *ConfigRawInput) {
				in.AdapterPrefixes = map[string]string{"git": "src/"}
			},
			wantErr: "--git-prefix",
		},
		{
			name: "no inputs at all",
			mutate: func(in *ConfigRawInput) {
				in.AnalyzerFiles = map[string][]string{}
			},
			wantErr: "no analyzer or repo input",
		},
		{
			name:    "unknown history backend",
			mutate:  func(in *ConfigRawInput) { in.HistoryBackend = "oracle" },
			wantErr: "invalid history backend",
		},
		{
			name:    "mysql without connection string",
			mutate:  func(in *ConfigRawInput) { in.HistoryBackend = "mysql" },
			wantErr: "history-db-connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			input := validInput()
			tt.mutate(input)

			err := ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessAndValidateAliases(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Authors.Aliases = map[string]string{"asmith": "Alice Smith"}

	require.NoError(t, ProcessAndValidate(cfg, input, testAnalyzerOrder, testRepoOrder))
	assert.Equal(t, "Alice Smith", cfg.Aliases["asmith"])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite with empty string", schema.SQLiteBackend, "", false},
		{"none with empty string", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/culprit", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/culprit", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=culprit", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=culprit", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := &Config{
		Analyzers: []AdapterInput{{Adapter: "pylint", Files: []string{"a.txt"}}},
		Repos:     []AdapterInput{{Adapter: "git", Files: []string{"b.txt"}, Prefix: "src/"}},
		Aliases:   map[string]string{"a": "Alice"},
		Args:      []string{"attribute", "--pylint", "a.txt"},
		Output:    schema.TextOut,
		Precision: 2,
	}

	clone := original.Clone()

	// Mutating the clone must not leak into the original.
	clone.Analyzers[0].Files[0] = "changed.txt"
	clone.Repos[0].Files[0] = "changed.txt"
	clone.Aliases["a"] = "Mallory"
	clone.Args[0] = "changed"

	assert.Equal(t, "a.txt", original.Analyzers[0].Files[0])
	assert.Equal(t, "b.txt", original.Repos[0].Files[0])
	assert.Equal(t, "Alice", original.Aliases["a"])
	assert.Equal(t, "attribute", original.Args[0])
	assert.Equal(t, original.Output, clone.Output)
	assert.Equal(t, original.Precision, clone.Precision)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "perf"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "perf", profile.Prefix)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/history"
	"github.com/huangsam/culprit/internal/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpSetup loads configuration for the MCP server. Adapter inputs are not
// validated here because they arrive with each tool call, and profiling is
// skipped because its output would pollute stdio used for the protocol.
func mcpSetup() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Validate everything except adapter inputs.
	if err := contract.ProcessAndValidateBase(cfg, input); err != nil {
		return err
	}
	cfg.Version = version
	cfg.Args = os.Args[1:]
	if !cfg.UseColors {
		color.NoColor = true
	}

	// 4. Initialize run history with validated config
	if err := history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	return nil
}

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Culprit MCP server",
	Long:  `Launch an MCP server that allows AI agents to attribute defects via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return mcpSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

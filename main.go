// main is the entrypoint for the culprit CLI.
package main

import (
	"github.com/huangsam/culprit/cmd"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/history"
)

func main() {
	defer history.CloseHistory()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogFatal("Failed to stop profiling", err)
	}
}

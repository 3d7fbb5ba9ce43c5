// main is the entry point for the tschart CLI.
package main

import (
	"github.com/huangsam/tschart/cmd"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/iostore"
)

func main() {
	cmd.SetStoreManager(iostore.Manager)

	err := cmd.Execute()
	iostore.CloseStores()
	if profileErr := cmd.StopProfiling(); profileErr != nil {
		contract.LogWarn("Failed to stop profiling", profileErr)
	}
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}

// main is the entry point for the burstline CLI.
package main

import (
	"os"

	"github.com/burstline/burstline/cmd"
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	err := cmd.Execute()

	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("could not stop profiling", profErr)
	}

	if err != nil {
		contract.LogWarn("command failed", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}

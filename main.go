package main

import (
	"os"

	"github.com/tanpawarit/Chative-Dialogue-Orchestrator/cmd"
	_ "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/logger/autoload"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

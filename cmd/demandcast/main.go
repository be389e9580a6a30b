package main

import (
	"os"

	"github.com/demandcast/backend/cmd/demandcast/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

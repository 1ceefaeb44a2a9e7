package main

import (
	"os"

	"mfrun/cmd/mfrun/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

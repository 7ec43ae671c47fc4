package main

import (
	"os"

	"github.com/elyxhealth/careteam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

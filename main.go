package main

import (
	"os"

	"github.com/ytpulse/ytpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

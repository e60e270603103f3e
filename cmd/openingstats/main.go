package main

import (
	"os"

	"github.com/vytor/openingstats/cmd/openingstats/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

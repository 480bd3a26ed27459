package main

import (
	"os"

	"github.com/msto63/diktat/cmd/diktat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

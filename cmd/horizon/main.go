package main

import (
	"os"

	"github.com/rustyeddy/horizon/cmd/horizon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

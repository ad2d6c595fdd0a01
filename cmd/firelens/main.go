package main

import (
	"os"

	"github.com/firelens/firelens/cmd/firelens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/vslobodin/jobscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

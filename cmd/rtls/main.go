package main

import (
	"os"

	"github.com/dorian305/rtls-client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

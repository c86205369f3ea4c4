// Package main provides the entry point for the repogrowth CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/repogrowth/cmd/repogrowth/commands"
	"github.com/Sumatoshi-tech/repogrowth/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := commands.NewRootCommand()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
		os.Exit(1)
	}
}

// Package main is the entry point for the delve engine CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "delve-engine",
	Short: "Dungeon economy and progression engine",
	Long:  `delve-engine drives the item, crafting, loot, and progression economy of a dungeon crawl from a content catalog.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

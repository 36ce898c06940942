package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gptdir/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gptdir",
		Short: "GPTDir API Server",
		Long:  `GPTDir is a curated GPT directory backend with a JSON-file catalog, public submissions and a PIN-protected admin API.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewPinCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

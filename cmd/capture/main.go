package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/domiapp/domi-backend/cmd/capture/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "domi-capture",
		Short: "Capture client for the Domi backend",
		Long:  "CLI for saving clips (pages, notes, images, PDFs) to a Domi backend",
	}

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSaveCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

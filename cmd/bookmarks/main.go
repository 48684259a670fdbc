package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "bookmarks",
		Short:   "A bookmark storage API",
		Long:    "bookmarks stores, lists, updates and deletes rated bookmarks behind a shared bearer token.",
		Version: build.String(),
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

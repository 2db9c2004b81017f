package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundlaw/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the compiled rule cache",
	Long:  "Remove every cached compiled rule from the user cache directory.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	cache, err := driver.OpenRuleCache()
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	dir := cache.Dir()
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "dropped rule cache at %s\n", dir)
	return nil
}

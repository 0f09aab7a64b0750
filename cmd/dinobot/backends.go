package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinobot/internal/registry"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List platform backends",
	Long:  `Shows the platform backends dinobot can read pixels from and send keys to.`,
	Args:  cobra.NoArgs,
	Run:   runBackends,
}

func runBackends(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	backends := registry.List()

	if len(backends) == 0 {
		fmt.Fprintln(w, "No backends available.")
		return
	}

	fmt.Fprintln(w, "Available backends:")
	fmt.Fprintln(w)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, b := range backends {
		if len(b.ID) > maxIDLen {
			maxIDLen = len(b.ID)
		}
	}

	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, b := range backends {
		fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, b.ID, b.Title)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dinobot play --backend <id>' to train on a backend.")
}

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniacca/entropia/internal/experiments"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			list := experiments.BuiltIn().List()

			if jsonOut {
				type entry struct {
					Name        string   `json:"name"`
					Description string   `json:"description"`
					Probes      []string `json:"probes"`
				}
				entries := make([]entry, 0, len(list))
				for _, e := range list {
					entries = append(entries, entry{
						Name:        e.Name,
						Description: e.Description,
						Probes:      e.ProbeNames(),
					})
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"experiments": entries,
					"count":       len(entries),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Available experiments (%d):\n\n", len(list))
			for _, e := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e.Name)
				if e.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "      %s\n", e.Description)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "      Probes: %s\n\n", strings.Join(e.ProbeNames(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

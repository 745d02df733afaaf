package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniacca/entropia/internal/experiments"
)

// loadExperiment resolves an experiment by name and decodes its parameters
// from the optional YAML file.
func loadExperiment(name, paramsPath string) (*experiments.Experiment, any, error) {
	exp, ok := experiments.BuiltIn().Get(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown experiment %q, try 'entropia list'", name)
	}

	var data []byte
	if paramsPath != "" {
		var err error
		data, err = os.ReadFile(paramsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading params file: %w", err)
		}
	}
	params, err := exp.DecodeParams(data)
	if err != nil {
		return nil, nil, err
	}
	return exp, params, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment>",
		Short: "Run one simulation and print its probe values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paramsPath, _ := cmd.Flags().GetString("params")
			steps, _ := cmd.Flags().GetInt("steps")
			jsonOut, _ := cmd.Flags().GetBool("json")

			exp, params, err := loadExperiment(args[0], paramsPath)
			if err != nil {
				return err
			}

			b, err := exp.Recipe(params)
			if err != nil {
				return err
			}
			s, err := b.Build()
			if err != nil {
				return err
			}
			if err := s.Run(steps); err != nil {
				return fmt.Errorf("running %s: %w", exp.Name, err)
			}

			probed := make(map[string]float64, len(exp.Probes))
			for _, name := range exp.ProbeNames() {
				v, err := exp.Probes[name](s)
				if err != nil {
					return fmt.Errorf("probe %s: %w", name, err)
				}
				probed[name] = v
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"experiment": exp.Name,
					"steps":      s.StepCount(),
					"probes":     probed,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s after %d steps:\n", exp.Name, s.StepCount())
			for _, name := range exp.ProbeNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %g\n", name, probed[name])
			}
			return nil
		},
	}

	cmd.Flags().String("params", "", "YAML file with experiment parameters")
	cmd.Flags().Int("steps", 100, "Number of simulation steps to run")
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

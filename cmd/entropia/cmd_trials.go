package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daniacca/entropia/internal/results"
	"github.com/daniacca/entropia/pkg/sim"
)

// probeStats summarizes one probe across all trials.
type probeStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func newTrialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trials <experiment>",
		Short: "Run many independent trials and summarize probe values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paramsPath, _ := cmd.Flags().GetString("params")
			steps, _ := cmd.Flags().GetInt("steps")
			trials, _ := cmd.Flags().GetInt("trials")
			parallel, _ := cmd.Flags().GetInt("parallel")
			outPath, _ := cmd.Flags().GetString("out")
			jsonOut, _ := cmd.Flags().GetBool("json")

			exp, params, err := loadExperiment(args[0], paramsPath)
			if err != nil {
				return err
			}
			b, err := exp.Recipe(params)
			if err != nil {
				return err
			}

			probeNames := exp.ProbeNames()
			probe := func(s *sim.Simulation) (map[string]float64, error) {
				values := make(map[string]float64, len(probeNames))
				for _, name := range probeNames {
					v, err := exp.Probes[name](s)
					if err != nil {
						return nil, fmt.Errorf("probe %s: %w", name, err)
					}
					values[name] = v
				}
				return values, nil
			}

			outcomes, err := sim.RunTrials(b, trials, steps, parallel, probe)
			if err != nil {
				return fmt.Errorf("running trials of %s: %w", exp.Name, err)
			}

			stats := make(map[string]probeStats, len(probeNames))
			for _, name := range probeNames {
				series := make([]float64, len(outcomes))
				for i, o := range outcomes {
					series[i] = o.Value[name]
				}
				stats[name] = probeStats{
					Mean: sim.Mean(series),
					Min:  sim.Min(series),
					Max:  sim.Max(series),
				}
			}

			runID := uuid.NewString()
			if outPath != "" {
				if err := persistTrials(outPath, runID, exp.Name, steps, outcomes, probeNames); err != nil {
					return err
				}
			}

			if jsonOut {
				out := map[string]any{
					"experiment": exp.Name,
					"trials":     trials,
					"steps":      steps,
					"stats":      stats,
				}
				if outPath != "" {
					out["run_id"] = runID
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d trials of %d steps\n\n", exp.Name, trials, steps)
			fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %12s %12s %12s\n", "probe", "mean", "min", "max")
			for _, name := range probeNames {
				st := stats[name]
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %12g %12g %12g\n", name, st.Mean, st.Min, st.Max)
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as run %s in %s\n", runID, outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("params", "", "YAML file with experiment parameters")
	cmd.Flags().Int("steps", 100, "Number of simulation steps per trial")
	cmd.Flags().Int("trials", 10, "Number of independent trials")
	cmd.Flags().Int("parallel", 4, "Number of trials to run concurrently")
	cmd.Flags().String("out", "", "SQLite file to persist trial results into")
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

func persistTrials(path, runID, experiment string, steps int, outcomes []sim.TrialResult[map[string]float64], probeNames []string) error {
	store, err := results.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var values []results.TrialValue
	for _, o := range outcomes {
		for _, name := range probeNames {
			values = append(values, results.TrialValue{
				TrialID:    o.ID,
				TrialIndex: o.Index,
				Probe:      name,
				Value:      o.Value[name],
			})
		}
	}
	run := results.Run{
		ID:         runID,
		Experiment: experiment,
		Steps:      steps,
		Trials:     len(outcomes),
		CreatedAt:  time.Now(),
	}
	return store.SaveRun(run, values)
}

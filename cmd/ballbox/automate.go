package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ballbox/internal/automation"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)
	res, err := automation.RunScenario(cmd.Context(), sc, cfg.Sandbox)
	if err != nil {
		return err
	}

	if len(res.Readings) > 1 {
		values := make([]float64, len(res.Readings))
		for i, r := range res.Readings {
			values[i] = r.Total()
		}
		fmt.Println(asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("kinetic energy")))
		fmt.Println()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range []string{"mean_energy", "energy_drift", "stability"} {
		fmt.Fprintf(w, "%s\t%.4f\n", name, res.Metrics[name])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepN,
		Steps:    steps,
		Dt:       dt,
		Seed:     seed,
	}, cfg.Sandbox)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN ENERGY\tDRIFT\tSTABLE\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%v\n", r.ParamValue, r.MeanEnergy, r.Drift, r.Stable)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		NumTrials: trials,
		Steps:     steps,
		Dt:        dt,
		Seed:      seed,
	}, cfg.Sandbox)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tBALLS\tFINAL ENERGY\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%v\n", r.TrialID, r.Seed, r.Balls, r.FinalEnergy, r.Stable)
	}
	w.Flush()
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

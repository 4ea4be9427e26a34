package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/server"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	dataDir    string
	seed       int64

	steps   int
	dt      float64
	every   int
	outFile string
	width   float64
	height  float64
	frames  int
	asJSON  bool
	addr    string

	renderSteps int
	recordOut   string
	recordDt    float64
	recordW     float64
	recordH     float64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepN     int
	trials     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ballbox",
		Short:        "verlet ball sandbox",
		SilenceUsage: true,
		RunE:         runTerminal,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "snapshot directory (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the sandbox headless and report energy",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&steps, "steps", 600, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")
	runCmd.Flags().IntVar(&every, "every", 60, "report every n steps")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the sandbox over http and websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one frame to png or svg",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "ballbox.png", "output file (.png, .svg or .txt)")
	renderCmd.Flags().IntVar(&renderSteps, "steps", 0, "steps to simulate before rendering")
	renderCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")
	renderCmd.Flags().Float64Var(&width, "width", 640, "image width")
	renderCmd.Flags().Float64Var(&height, "height", 360, "image height")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record an animated gif",
		RunE:  runRecord,
	}
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "ballbox.gif", "output file")
	recordCmd.Flags().IntVar(&frames, "frames", 120, "number of frames")
	recordCmd.Flags().Float64Var(&recordDt, "dt", 1.0/30, "timestep per frame")
	recordCmd.Flags().Float64Var(&recordW, "width", 320, "image width")
	recordCmd.Flags().Float64Var(&recordH, "height", 180, "image height")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "inspect the stored snapshot",
	}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "summarise the stored snapshot",
		RunE:  showSnapshot,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot")
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "delete the stored snapshot",
		RunE:  clearSnapshot,
	}
	snapshotCmd.AddCommand(showCmd, clearCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(initCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one sandbox parameter",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "box_k", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "lowest value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "highest value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 6, "number of values")
	sweepCmd.Flags().IntVar(&steps, "steps", 600, "steps per run")
	sweepCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat the sandbox over many seeds",
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().IntVar(&steps, "steps", 600, "steps per trial")
	monteCarloCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")

	rootCmd.AddCommand(runCmd, serveCmd, renderCmd, recordCmd, snapshotCmd, presetsCmd, configCmd, scenarioCmd, sweepCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, .env and BALLBOX_* variables,
// the preset and finally command-line flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.ApplyEnv()
	if preset != "" && !cfg.Apply(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if dataDir != "" {
		cfg.Store.Dir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	return snapshot.Open(ctx, snapshot.Options{
		Backend:  cfg.Store.Backend,
		Dir:      cfg.Store.Dir,
		RedisURL: cfg.Store.RedisURL,
		Key:      cfg.Store.Key,
	})
}

// newSandbox builds a populated sandbox of the given size, or of the
// configured size when w or h is zero.
func newSandbox(cfg *config.Config, w, h float64) (*sandbox.Sandbox, error) {
	if w <= 0 || h <= 0 {
		w, h = cfg.Sandbox.Width, cfg.Sandbox.Height
	}
	sb, err := sandbox.New(cfg.Sandbox, w, h, seed)
	if err != nil {
		return nil, err
	}
	sb.Populate()
	return sb, nil
}

// restoreFrom loads the stored snapshot, falling back to a fresh scene.
func restoreFrom(ctx context.Context, sb *sandbox.Sandbox, store snapshot.Store) {
	if err := sb.Load(ctx, store); err != nil {
		log.Printf("[SNAPSHOT] discarded stored snapshot: %v", err)
	}
}

func runTerminal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sb, err := sandbox.New(cfg.Sandbox, cfg.Sandbox.Width, cfg.Sandbox.Height, seed)
	if err != nil {
		return err
	}
	restoreFrom(ctx, sb, store)

	p := tea.NewProgram(viz.NewModel(sb, store, cfg.View.FPS), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sb, err := sandbox.New(cfg.Sandbox, cfg.Sandbox.Width, cfg.Sandbox.Height, seed)
	if err != nil {
		return err
	}
	tick := time.Duration(cfg.Server.TickMillis) * time.Millisecond
	runner := server.NewRunner(sb, store, server.NewHub(), tick)
	if err := runner.Load(ctx); err != nil {
		log.Printf("[SNAPSHOT] discarded stored snapshot: %v", err)
	}
	return server.New(runner).ListenAndServe(ctx, cfg.Server.Addr)
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load(cmd.Context())
	if errors.Is(err, snapshot.ErrNotFound) {
		fmt.Println("no snapshot stored")
		return nil
	}
	if err != nil {
		return err
	}
	if asJSON {
		data, err := snapshot.Encode(snap)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	printSnapshot(snap)
	return nil
}

func clearSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("snapshot cleared")
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "ballbox.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.DefaultConfig()
	if preset != "" && !cfg.Apply(preset) {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

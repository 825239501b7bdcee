package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/floodsim/internal/api"
	"github.com/talgya/floodsim/internal/collect"
	"github.com/talgya/floodsim/internal/config"
	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/persistence"
	"github.com/talgya/floodsim/internal/rainfall"
	"github.com/talgya/floodsim/internal/report"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		steps      int
		seed       int64
		dbPath     string
		outputDir  string
		apiPort    int
		noLog      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and record its results",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimulation(configPath, steps, seed, dbPath, outputDir, apiPort, noLog, verbose)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config/simulation.yaml", "path to the configuration file")
	cmd.Flags().IntVar(&steps, "steps", 0, "override the configured step count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the configured random seed")
	cmd.Flags().StringVar(&dbPath, "db", "output/floodsim.db", "SQLite database path")
	cmd.Flags().StringVar(&outputDir, "output", "output", "directory for reports and state logs")
	cmd.Flags().IntVar(&apiPort, "port", 0, "serve the HTTP API on this port (0 = disabled)")
	cmd.Flags().BoolVar(&noLog, "no-state-log", false, "skip the compressed agent-state log")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "debug logging")

	return cmd
}

func validateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration file without running",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			fmt.Println("configuration is valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config/simulation.yaml", "path to the configuration file")
	return cmd
}

func runSimulation(configPath string, steps int, seed int64, dbPath, outputDir string, apiPort int, noLog, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if steps > 0 {
		cfg.Simulation.Steps = steps
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}

	rain := rainfall.NewField(
		cfg.Simulation.Seed+1,
		cfg.Rainfall.BaseRate,
		cfg.Rainfall.Variability,
		cfg.Rainfall.NoiseScale,
	)

	mdl, err := model.New(cfg, rain)
	if err != nil {
		return fmt.Errorf("initialize model: %w", err)
	}

	rawCfg, _ := os.ReadFile(configPath)
	db, err := persistence.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runID, err := db.BeginRun(cfg.Simulation.Seed, string(rawCfg))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	slog.Info("run started", "run_id", runID, "steps", cfg.Simulation.Steps, "seed", cfg.Simulation.Seed)

	var stateLog *collect.StateLog
	if !noLog {
		stateLog, err = collect.NewStateLog(outputDir, runID)
		if err != nil {
			return fmt.Errorf("open state log: %w", err)
		}
	}

	collector := collect.New(mdl, db, runID, stateLog)
	mdl.OnStep(collector.Collect)

	if apiPort > 0 {
		server := &api.Server{
			Mdl:      mdl,
			DB:       db,
			RunID:    runID,
			Port:     apiPort,
			AdminKey: os.Getenv("FLOODSIM_ADMIN_KEY"),
		}
		stream := server.Start()
		mdl.OnStep(func(uint64) { stream.Broadcast(mdl.Snapshot()) })
	}

	mdl.Run(cfg.Simulation.Steps)

	if err := collector.Close(); err != nil {
		slog.Warn("collector close failed", "error", err)
	}
	if err := db.FinishRun(runID, mdl.CurrentStep()); err != nil {
		slog.Warn("finish run record failed", "error", err)
	}

	summary := report.Build(runID, mdl)
	if err := report.Write(outputDir, summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.Info("run complete",
		"run_id", runID,
		"steps", mdl.CurrentStep(),
		"avg_flood_level", fmt.Sprintf("%.2f", summary.Final.AverageFloodLevel),
		"total_damage", fmt.Sprintf("%.0f", summary.Final.TotalDamage),
		"evacuation_rate", fmt.Sprintf("%.3f", summary.Final.EvacuationRate),
		"shelter_occupancy", fmt.Sprintf("%.3f", summary.Final.ShelterOccupancyRate),
	)
	return nil
}

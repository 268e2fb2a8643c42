package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ktakeda47/jikanwari/app"
	"github.com/ktakeda47/jikanwari/config"
	"github.com/ktakeda47/jikanwari/core/engine"
	"github.com/ktakeda47/jikanwari/infra/logger"
	"github.com/ktakeda47/jikanwari/pkg/export"
)

var (
	genMaxIterations int
	genSoft          bool
	genRandomness    float64
	genStartEmpty    bool
	genSeed          int64
	genOutput        string
	genFormat        string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a weekly timetable from the configured school file",
	RunE:  runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.IntVar(&genMaxIterations, "max-iterations", 0, "optimizer iteration cap")
	flags.BoolVar(&genSoft, "soft-constraints", false, "enable the relaxed fill passes for stubborn empty slots")
	flags.Float64Var(&genRandomness, "randomness-level", 0, "placement randomness between 0 and 1")
	flags.BoolVar(&genStartEmpty, "start-empty", false, "discard loaded lessons and generate from a blank grid")
	flags.Int64Var(&genSeed, "seed", 0, "random seed, 0 draws one per run")
	flags.StringVarP(&genOutput, "output", "o", "", "write the timetable to this file instead of stdout")
	flags.StringVarP(&genFormat, "format", "f", "csv", "output format, csv or json")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genFormat != "csv" && genFormat != "json" {
		return fmt.Errorf("unknown format %q", genFormat)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyGenerateFlags(cmd, cfg)

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	reportResult(res)
	return writeResult(cmd, res)
}

// applyGenerateFlags copies flags the user actually set onto the engine
// configuration, leaving the config file's values alone otherwise.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		cfg.Engine.MaxIterations = genMaxIterations
	}
	if flags.Changed("soft-constraints") {
		cfg.Engine.AllowSoftConstraints = genSoft
	}
	if flags.Changed("randomness-level") {
		cfg.Engine.RandomnessLevel = genRandomness
	}
	if flags.Changed("start-empty") {
		cfg.Engine.StartEmpty = genStartEmpty
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed = genSeed
	}
}

func reportResult(res *engine.Result) {
	logg := logger.New("generate")
	for _, v := range res.Violations {
		logg.Warnf("%s %s: %s", v.Priority, v.Constraint, v.Message)
	}
	for _, inf := range res.Infeasibilities {
		logg.Warnf("infeasible: %s", inf.String())
	}
	logg.Infof("seed %d, score %.2f, %d violations, fill rate %.1f%%",
		res.Seed, res.Score.Total, len(res.Violations), res.FillRate()*100)
}

func writeResult(cmd *cobra.Command, res *engine.Result) error {
	rows := export.Rows(res.Schedule)
	if genOutput == "" {
		return writeRows(cmd.OutOrStdout(), rows)
	}
	f, err := os.Create(genOutput)
	if err != nil {
		return err
	}
	werr := writeRows(f, rows)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func writeRows(w io.Writer, rows []export.Row) error {
	if genFormat == "json" {
		return export.WriteJSON(w, rows)
	}
	return export.WriteCSV(w, rows)
}

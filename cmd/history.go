package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ktakeda47/jikanwari/config"
	"github.com/ktakeda47/jikanwari/core/runlog"
	"github.com/ktakeda47/jikanwari/infra/logger"
)

var (
	histRunID    string
	histSince    time.Duration
	histMaxScore float64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored generation runs",
	RunE:  runHistory,
}

func init() {
	flags := historyCmd.Flags()
	flags.StringVar(&histRunID, "run", "", "only the run with this id")
	flags.DurationVar(&histSince, "since", 0, "only runs younger than this, e.g. 24h")
	flags.Float64Var(&histMaxScore, "max-score", 0, "only runs at or below this score")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return fmt.Errorf("run log store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("main").Errorf("store close: %v", err)
		}
	}()

	q := runlog.RunQuery{RunID: histRunID, MaxScore: histMaxScore}
	if histSince > 0 {
		q.Since = time.Now().Add(-histSince)
	}
	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, rec := range records {
		fmt.Fprintf(out, "%s  %s  seed=%d  score=%.2f  violations=%d  filled=%d/%d\n",
			rec.Started.Format(time.RFC3339), rec.RunID, rec.Seed,
			rec.Score, rec.Violations, rec.FilledCells, rec.TotalCells)
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ktakeda47/jikanwari/app"
	"github.com/ktakeda47/jikanwari/config"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
	"github.com/ktakeda47/jikanwari/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the school data and any pre-filled timetable for problems",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	violations, err := svc.ValidateSetup()
	if err != nil {
		var setup *timetable.SetupError
		if errors.As(err, &setup) {
			fmt.Fprintln(cmd.ErrOrStderr(), timetable.DescribeGaps(err))
			return fmt.Errorf("school setup has %d gaps", len(setup.Gaps))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if len(violations) == 0 {
		fmt.Fprintln(out, "ok")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintf(out, "%s\t%s\t%s\n", v.Priority, v.Constraint, v.Message)
	}
	if n := model.CountByPriority(violations)[model.PriorityCritical]; n > 0 {
		return fmt.Errorf("%d critical violations", n)
	}
	return nil
}

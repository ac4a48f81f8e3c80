package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jayquinn/interview-scheduler-sub001/app"
	"github.com/jayquinn/interview-scheduler-sub001/config"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule every day of the plan and write the results",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if report.Status == model.StatusFailed {
		return fmt.Errorf("no day produced a schedule; failed dates: %v", report.FailedDates)
	}
	return nil
}

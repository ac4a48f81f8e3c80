package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jayquinn/interview-scheduler-sub001/config"
	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and every day's feasibility preconditions",
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
	plan, err := cfg.Plan.ToPlan()
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	log := logger.New("validate")
	for _, day := range plan.Days {
		dc, err := plan.DayConfig(day)
		if err != nil {
			return fmt.Errorf("day %s: %w", day.Date.Format("2006-01-02"), err)
		}
		applicants := 0
		for _, n := range dc.Jobs {
			applicants += n
		}
		log.Infof("day %s ok: %d applicants, %d activities, %d rooms",
			day.Date.Format("2006-01-02"), applicants, len(dc.Activities), len(dc.Rooms))
	}
	log.Infof("configuration valid: %d days", len(plan.Days))
	return nil
}

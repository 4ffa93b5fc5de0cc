package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/finpal-backend/internal/application/service"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
)

func newRulesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Maintain transaction rules",
	}
	cmd.AddCommand(newRulesApplyCommand(a))
	cmd.AddCommand(newRulesStatsCommand(a))
	return cmd
}

func newRulesApplyCommand(a *app) *cobra.Command {
	flags := &RulesApplyFlags{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply active rules to every stored transaction",
		Long: `Evaluate the active rules against every stored transaction and save
the assignments of the first matching rule. Running it twice changes nothing
the second time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := a.cfg.Rules.BulkApplyTimeout
			if flags.Timeout != "" {
				d, err := time.ParseDuration(flags.Timeout)
				if err != nil {
					return fmt.Errorf("invalid --timeout: %w", err)
				}
				timeout = d
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := service.NewRuleService(store, rules.NewEngine(), timeout, a.logger)
			result, err := svc.BulkApply(cmd.Context())
			if err != nil {
				return err
			}
			PrintBulkSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "Give up after this long, e.g. 90s (default from config)")
	return cmd
}

func newRulesStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rule counts and match statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := service.NewRuleService(store, rules.NewEngine(), a.cfg.Rules.BulkApplyTimeout, a.logger)
			ruleSet, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			PrintRuleStats(cmd.OutOrStdout(), rules.ComputeStats(ruleSet), ruleSet)
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/rules"
)

func newRulesCommand() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
	}
	rulesCmd.AddCommand(newRulesListCommand())
	rulesCmd.AddCommand(newRulesTestCommand())
	return rulesCmd
}

func newRulesListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			all, err := e.rules.All(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range all {
				state := "enabled"
				if !r.Enabled {
					state = "disabled"
				}
				fmt.Printf("%s  p%-4d %-10s %s %s %q -> %s\n",
					r.ID, r.Priority, state, r.Field, r.Operator, r.Text, r.AssignAccountID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

func newRulesTestCommand() *cobra.Command {
	var dir string
	var field, operator, text, minAmount, maxAmount, direction, account string
	var limit int

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test a candidate rule against recent transactions without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := model.BankRule{
				Name:      "candidate",
				AccountID: account,
				Field:     model.MatchField(field),
				Operator:  model.MatchType(operator),
				Text:      text,
				Direction: model.Direction(direction),
				Enabled:   true,
			}
			if minAmount != "" {
				d, err := decimal.NewFromString(minAmount)
				if err != nil {
					return fmt.Errorf("parsing --min %q: %w", minAmount, err)
				}
				rule.MinAmount = &d
			}
			if maxAmount != "" {
				d, err := decimal.NewFromString(maxAmount)
				if err != nil {
					return fmt.Errorf("parsing --max %q: %w", maxAmount, err)
				}
				rule.MaxAmount = &d
			}

			if verrs := rules.Validate(rule); len(verrs) > 0 {
				msgs := make([]string, len(verrs))
				for i, ve := range verrs {
					msgs[i] = ve.Error()
				}
				return fmt.Errorf("invalid rule: %s", strings.Join(msgs, "; "))
			}

			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			sample, err := e.txns.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			hits := rules.Test(rule, sample)
			for _, t := range hits {
				fmt.Printf("%s  %s  %10s  %s\n",
					t.ID, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Description)
			}
			fmt.Printf("%d of %d recent transactions match\n", len(hits), len(sample))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&field, "field", "description", "match field (description, amount, both)")
	cmd.Flags().StringVar(&operator, "operator", "contains", "match operator (contains, starts_with, equals, regex)")
	cmd.Flags().StringVar(&text, "text", "", "match text")
	cmd.Flags().StringVar(&minAmount, "min", "", "minimum absolute amount")
	cmd.Flags().StringVar(&maxAmount, "max", "", "maximum absolute amount")
	cmd.Flags().StringVar(&direction, "direction", "", "transaction direction (debit, credit)")
	cmd.Flags().StringVar(&account, "account", "", "restrict to one bank account")
	cmd.Flags().IntVar(&limit, "limit", 100, "sample size")

	return cmd
}

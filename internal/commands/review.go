package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/ledger"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/lifecycle"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/match"
)

// controller builds the lifecycle controller for review commands. The
// journal poster is only exercised by the post command but wiring it is
// cheap.
func (e *env) controller() *lifecycle.Controller {
	poster := ledger.NewJournalPoster(e.journalPath(), e.txns)
	return lifecycle.NewController(e.txns, e.dir, poster, e.log)
}

func printBulk(res lifecycle.BulkResult) {
	for _, it := range res.Items {
		if it.OK {
			fmt.Printf("approved %s\n", it.TransactionID)
		} else {
			fmt.Printf("failed   %s: %s\n", it.TransactionID, it.Reason)
		}
	}
	fmt.Printf("%d approved, %d failed\n", res.Succeeded(), res.Failed())
}

func newApproveCommand() *cobra.Command {
	var dir string
	var highConfidence bool

	cmd := &cobra.Command{
		Use:   "approve [transaction-id...]",
		Short: "Approve pending transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !highConfidence && len(args) == 0 {
				return fmt.Errorf("provide transaction ids or --high-confidence")
			}

			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()
			ctrl := e.controller()

			if highConfidence {
				res, err := ctrl.ApproveHighConfidence(cmd.Context())
				if err != nil {
					return err
				}
				printBulk(res)
				return nil
			}
			printBulk(ctrl.Approve(cmd.Context(), args))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&highConfidence, "high-confidence", false,
		fmt.Sprintf("approve all pending transactions with confidence >= %d", lifecycle.HighConfidenceThreshold))
	return cmd
}

func newRejectCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "reject <transaction-id>",
		Short: "Reject a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()
			return e.controller().Reject(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

func newExcludeCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "exclude <transaction-id>",
		Short: "Exclude a pending transaction from journaling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()
			return e.controller().Exclude(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

func newMatchCommand() *cobra.Command {
	var dir string
	var paymentID string

	cmd := &cobra.Command{
		Use:   "match <transaction-id>",
		Short: "Show invoice candidates for a deposit, or record an accepted match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			if paymentID != "" {
				return e.controller().MatchInvoice(cmd.Context(), args[0], paymentID)
			}

			txn, err := e.txns.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			candidates := match.Candidates(txn, e.dir.OpenInvoices())
			if len(candidates) == 0 {
				fmt.Println("no candidates")
				return nil
			}
			for _, c := range candidates {
				fmt.Printf("%-8s %s  %10s  %s\n", c.Tier, c.InvoiceID, c.AppliedAmount.StringFixed(2), c.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&paymentID, "payment", "", "payment record id created for the accepted match")
	return cmd
}

func newPostCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post all approved transactions to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.controller().Post(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("posted %d transactions\n", res.Count)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

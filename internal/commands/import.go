package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/parser"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/pipeline"
)

func newImportCommand() *cobra.Command {
	var dir string
	var accountID string
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}

			ruleset, err := e.rules.Enabled(cmd.Context())
			if err != nil {
				return err
			}

			accountName := ""
			if acct, ok := e.cfg.Account(accountID); ok {
				accountName = acct.Name
			}

			importer := pipeline.NewImporter(e.txns, e.batches, e.log)
			report, err := importer.Import(cmd.Context(), pipeline.Request{
				FileName:    filepath.Base(args[0]),
				Data:        data,
				AccountID:   accountID,
				AccountName: accountName,
				Source:      model.SourceManualImport,
				Format:      parser.Format(format),
			}, ruleset)
			if err != nil {
				return err
			}

			fmt.Printf("Batch %s (%s): %d parsed, %d duplicates, %d imported, %d auto-matched\n",
				report.BatchID, report.Format, report.Parsed, report.Duplicates,
				report.Imported, report.AutoMatched)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&accountID, "account", "", "bank account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&format, "format", "", "statement format (csv, ofx, qfx, qbo); sniffed when omitted")

	return cmd
}

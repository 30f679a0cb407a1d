package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankfeed project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// directoryHeaders seeds the reference-data CSVs.
var directoryHeaders = map[string]string{
	"accounts.csv":  "id,name,type\n",
	"vendors.csv":   "id,name\n",
	"customers.csv": "id,name\n",
	"classes.csv":   "id,name\n",
	"invoices.csv":  "id,number,customer_id,customer_name,total,amount_paid,status\n",
}

func runInit(dir, name string) error {
	cfg := config.Default(name)

	for _, d := range []string{cfg.Directory.Path, "ledger"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	for file, header := range directoryHeaders {
		path := filepath.Join(dir, cfg.Directory.Path, file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", file, err)
		}
	}

	cfgPath := filepath.Join(dir, "bankfeed.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	fmt.Printf("Initialized bankfeed project in %s\n", dir)
	return nil
}

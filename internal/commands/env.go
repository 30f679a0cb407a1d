package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/config"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/directory"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

// env bundles the collaborators every command needs: config, record
// store, typed wrappers, directory and logger.
type env struct {
	root    string
	cfg     *config.Config
	txns    *store.TransactionStore
	rules   *store.RuleStore
	batches *store.BatchStore
	dir     *directory.Service
	log     *zap.Logger

	pg *store.Postgres
}

// newEnv loads bankfeed.yaml from root and connects to the record store.
// A .env file beside the config may supply BANKFEED_STORE_DSN.
func newEnv(ctx context.Context, root string) (*env, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	_ = godotenv.Load(filepath.Join(absRoot, ".env"))

	cfg, err := config.Load(filepath.Join(absRoot, "bankfeed.yaml"))
	if err != nil {
		return nil, err
	}

	dsn := os.Getenv("BANKFEED_STORE_DSN")
	if dsn == "" {
		dsn = cfg.Store.DSN
	}
	if dsn == "" {
		return nil, errors.New("store DSN not configured: set store.dsn in bankfeed.yaml or BANKFEED_STORE_DSN")
	}

	pg, err := store.NewPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}

	dirSvc, err := directory.Load(filepath.Join(absRoot, cfg.Directory.Path))
	if err != nil {
		pg.Close()
		return nil, err
	}

	log, err := zap.NewProduction()
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &env{
		root:    absRoot,
		cfg:     cfg,
		txns:    store.NewTransactionStore(pg),
		rules:   store.NewRuleStore(pg),
		batches: store.NewBatchStore(pg),
		dir:     dirSvc,
		log:     log,
		pg:      pg,
	}, nil
}

func (e *env) close() {
	e.pg.Close()
	_ = e.log.Sync()
}

// journalPath resolves the ledger journal location under the project root.
func (e *env) journalPath() string {
	path := e.cfg.Ledger.JournalPath
	if path == "" {
		path = "ledger/journal.csv"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	return path
}

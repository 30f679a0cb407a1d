package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/api"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/directory"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/ledger"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/lifecycle"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/pipeline"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

func newServeCommand() *cobra.Command {
	var dir string
	var addr string
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if memory {
				return runServeMemory(cmd.Context(), dir, addr)
			}

			e, err := newEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.close()

			srv := api.NewServer(
				pipeline.NewImporter(e.txns, e.batches, e.log),
				e.controller(),
				e.txns, e.rules, e.batches, e.dir, e.log,
			)
			return serve(cmd.Context(), addr, srv.Routes(), e.log)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&memory, "memory", false, "use an in-memory store instead of Postgres (data is lost on exit)")

	return cmd
}

// runServeMemory wires the API onto the in-memory store. Useful for
// local poking without a database.
func runServeMemory(ctx context.Context, dir, addr string) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dirSvc, err := directory.Load(filepath.Join(dir, "directory"))
	if err != nil {
		return err
	}

	mem := store.NewMemory()
	txns := store.NewTransactionStore(mem)
	ruleStore := store.NewRuleStore(mem)
	batches := store.NewBatchStore(mem)

	poster := ledger.NewJournalPoster("journal.csv", txns)
	ctrl := lifecycle.NewController(txns, dirSvc, poster, log)
	importer := pipeline.NewImporter(txns, batches, log)

	srv := api.NewServer(importer, ctrl, txns, ruleStore, batches, dirSvc, log)
	return serve(ctx, addr, srv.Routes(), log)
}

func serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

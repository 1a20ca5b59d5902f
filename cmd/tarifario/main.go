package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tarifario/internal/config"
	"tarifario/internal/logging"
	"tarifario/internal/storage"
)

// app holds what every command needs once the root command has run.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *storage.DB
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{}
	must(execute(ctx, newRootCmd(a), a))
}

// execute runs root and then releases what the command opened, whether or
// not it failed.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tarifario",
		Short:         "Catalog and tariff back office for the store chain",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	root.AddCommand(
		newImportCmd(a),
		newConvertCmd(a),
		newQueryCmd(a),
		newReportCmd(a),
		newBackupCmd(a),
		newPOSCmd(a),
		newFamilyCmd(a),
		newGroupCmd(a),
		newUserCmd(a),
		newDocsCmd(a),
		newMailCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.db = cfg, logger, db
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

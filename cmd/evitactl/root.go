package main

import (
	"context"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/evita-client-go/evita/config"
	"github.com/krew-solutions/evita-client-go/evita/querylog"
	"github.com/krew-solutions/evita-client-go/evita/session"
	sessionpgx "github.com/krew-solutions/evita-client-go/evita/session/pgx"
)

// Pool is the part of a session pool the commands rely on.
type Pool interface {
	session.SessionPool
	session.Observable
	Close()
}

type openPool func(ctx context.Context, connString string) (Pool, error)

func openPgPool(ctx context.Context, connString string) (Pool, error) {
	pool, err := sessionpgx.Open(ctx, connString)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

type rootOptions struct {
	configPath string
	verbose    bool
	open       openPool
}

func newRootCommand(open openPool) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:          "evitactl",
		Short:        "Inspect the query-shape log of evita clients",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every statement")

	cmd.AddCommand(newSetupCommand(opts))
	cmd.AddCommand(newShapesCommand(opts))
	cmd.AddCommand(newEntriesCommand(opts))
	return cmd
}

func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	logger log.Logger
	pool   Pool
	log    *querylog.PgQueryLog
}

// withEnv loads the config, opens the pool and runs fn. The pool is closed
// when fn returns.
func (o *rootOptions) withEnv(cmd *cobra.Command, fn func(*env) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), o.verbose)

	pool, err := o.open(cmd.Context(), cfg.Database.ConnString())
	if err != nil {
		level.Error(logger).Log("msg", "unable to connect", "host", cfg.Database.Host, "err", err)
		return err
	}
	defer pool.Close()

	if o.verbose {
		subscription := querylog.LogQueries(logger, pool)
		defer subscription.Dispose()
	}

	return fn(&env{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		log: querylog.NewPgQueryLog(
			querylog.WithTable(cfg.QueryLogTable()),
			querylog.WithLogger(logger),
		),
	})
}

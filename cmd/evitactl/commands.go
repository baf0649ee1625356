package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/evita-client-go/evita/session"
)

func newSetupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the query log table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				if err := e.log.Setup(cmd.Context(), e.pool); err != nil {
					return err
				}
				level.Info(e.logger).Log("msg", "query log is ready", "table", e.cfg.QueryLogTable())
				return nil
			})
		},
	}
}

func newShapesCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "List the most recorded query shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}
			return opts.withEnv(cmd, func(e *env) error {
				return e.pool.Session(cmd.Context(), func(s session.Session) error {
					stats, err := e.log.Shapes(s.(session.DbSession), limit)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "COUNT\tCOLLECTION\tLAST SEEN\tSHAPE")
					for _, st := range stats {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Count, st.Collection, st.LastSeen.UTC().Format(time.RFC3339), st.Shape)
					}
					return w.Flush()
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of shapes to list")
	return cmd
}

func newEntriesCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "entries <shape>",
		Short: "List the parameters recorded for a query shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}
			return opts.withEnv(cmd, func(e *env) error {
				return e.pool.Session(cmd.Context(), func(s session.Session) error {
					entries, err := e.log.Entries(s.(session.DbSession), args[0], limit)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tCLIENT\tRECORDED AT\tPARAMETERS")
					for _, entry := range entries {
						params, err := json.Marshal(entry.Parameters)
						if err != nil {
							return err
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ID, entry.ClientID, entry.RecordedAt.UTC().Format(time.RFC3339), params)
					}
					return w.Flush()
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to list")
	return cmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"todolist/internal/export"
	"todolist/internal/stats"
	"todolist/internal/task"
	"todolist/internal/view"
)

func exportCmd(e *env) *cobra.Command {
	var format, out, status, timeFilter string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered list as json, csv, pdf or ics",
		Example: `  todo export --format csv --out tasks.csv
  todo export --format pdf --status pending --time weekly --out week.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := e.query(status, timeFilter)
			if err != nil {
				return err
			}
			return e.withStore(func(store *task.Store) error {
				now := timeNow()
				b, err := export.Export(view.Build(store.Tasks(), q, now), format, now)
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = e.out.Write(b)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return err
				}
				e.log.WithField("path", out).WithField("format", format).Info("exported tasks")
				fmt.Fprintln(e.out, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "json, csv, pdf or ics")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "all, pending or completed")
	cmd.Flags().StringVarP(&timeFilter, "time", "t", "", "today, weekly or monthly")
	return cmd
}

func statsCmd(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts and the recent creation rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return errors.New("--days must be at least 1")
			}
			return e.withStore(func(store *task.Store) error {
				now := timeNow()
				enc := json.NewEncoder(e.out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats.Calculate(store.Tasks(), now.AddDate(0, 0, -days), now))
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "window for the creation rate")
	return cmd
}

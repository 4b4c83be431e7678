package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"todolist/internal/app"
	"todolist/internal/server"
	"todolist/internal/task"
	"todolist/internal/tui"
)

func serveCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page and JSON API",
		Long: `Serve the task list over HTTP.

Examples:
  todo serve
  todo serve --addr 127.0.0.1:8080 --driver sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				e.cfg.Server.Addr = addr
			}
			q, err := e.query("", "")
			if err != nil {
				return err
			}
			return e.withStore(func(store *task.Store) error {
				srv, err := server.New(server.Options{
					Store:         store,
					WeekStart:     q.WeekStart,
					DefaultStatus: q.Status,
					Logger:        e.log,
				})
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				err = srv.ListenAndServe(ctx, e.cfg.Server.Addr)
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func tuiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := e.query("", "")
			if err != nil {
				return err
			}
			// log lines would tear the alternate screen
			e.log.SetOutput(io.Discard)
			return e.withStore(func(store *task.Store) error {
				return tui.Run(app.NewSession(store, app.WithLogger(e.log), app.WithQuery(q)))
			})
		},
	}
}

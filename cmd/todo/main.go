package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"todolist/internal/clock"
	"todolist/internal/config"
	"todolist/internal/logging"
	"todolist/internal/storage"
	"todolist/internal/task"
	"todolist/internal/view"
)

var Version = "dev"

var timeNow = time.Now

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is the per-invocation state shared by subcommands.
type env struct {
	out io.Writer
	log *logrus.Logger
	cfg *config.Config

	configPath string
	dataDir    string
	driver     string
	envFile    string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	e := &env{out: out}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A small to-do list with today, weekly and monthly buckets",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(e.envFile); err != nil {
				return fmt.Errorf("load %s: %w", e.envFile, err)
			}
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = e.dataDir
			}
			if cmd.Flags().Changed("driver") {
				cfg.Storage.Driver = e.driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			e.cfg = cfg
			e.log = logging.New(cfg.Log, errOut)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&e.configPath, "config", "todo.yaml", "path to YAML config")
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&e.dataDir, "data-dir", "", "data directory (overrides config)")
	root.PersistentFlags().StringVar(&e.driver, "driver", "", "storage driver: memory, file or sqlite (overrides config)")

	root.AddCommand(
		addCmd(e),
		listCmd(e),
		setCompletedCmd(e, "done", "Mark a task completed", true),
		setCompletedCmd(e, "undo", "Mark a task pending", false),
		editCmd(e),
		rmCmd(e),
		clearCmd(e),
		exportCmd(e),
		statsCmd(e),
		backupCmd(e),
		restoreCmd(e),
		drillCmd(e),
		serveCmd(e),
		tuiCmd(e),
	)
	return root
}

// withStore opens the configured slot, loads the collection and closes the
// slot once fn returns.
func (e *env) withStore(fn func(*task.Store) error) error {
	slot, err := storage.Open(e.cfg.Storage.Driver, e.cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := slot.Close(); cerr != nil {
			e.log.WithError(cerr).Warn("close storage")
		}
	}()

	store := task.NewStore(slot,
		task.WithKey(e.cfg.Storage.Key),
		task.WithClock(clock.Func(timeNow)),
		task.WithLogger(e.log),
	)
	store.Load()
	return fn(store)
}

// query builds the view query from flag values, falling back to the
// configured default status.
func (e *env) query(status, tf string) (view.Query, error) {
	ws, err := e.cfg.WeekStart()
	if err != nil {
		return view.Query{}, err
	}
	if strings.TrimSpace(status) == "" {
		status = e.cfg.View.DefaultStatus
	}
	st, err := view.ParseStatus(status)
	if err != nil {
		return view.Query{}, err
	}
	t, err := view.ParseTimeFilter(tf)
	if err != nil {
		return view.Query{}, err
	}
	return view.Query{Status: st, Time: t, WeekStart: ws}, nil
}

// resolveID accepts a full id or an unambiguous prefix of at least four
// characters.
func resolveID(store *task.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if _, ok := store.Get(arg); ok {
		return arg, nil
	}
	if len(arg) < 4 {
		return "", fmt.Errorf("no task with id %q", arg)
	}
	var match string
	for _, t := range store.Tasks() {
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", arg)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task with id %q", arg)
	}
	return match, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

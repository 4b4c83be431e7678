package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"todolist/internal/ops"
)

func backupCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as .tar.gz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join("backups", "todo-"+timestamp(timeNow())+".tar.gz")
			}
			sum, err := ops.Backup(e.cfg.DataDir, out)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			e.log.WithField("files", sum.Files).WithField("bytes", sum.Bytes).Info("backup written")
			fmt.Fprintln(e.out, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output archive path (.tar.gz)")
	return cmd
}

func restoreCmd(e *env) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Unpack a backup archive into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return errors.New("--target-dir is required")
			}
			sum, err := ops.Restore(args[0], target)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(e.out, "restored %d files into %s\n", sum.Files, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	return cmd
}

func drillCmd(e *env) *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore and compare digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ops.Drill(e.cfg.DataDir, workDir, timeNow())
			if err != nil {
				return fmt.Errorf("drill failed: %w", err)
			}
			fmt.Fprintln(e.out, "backup:", res.Archive)
			fmt.Fprintln(e.out, "restored:", res.RestoreDir)
			fmt.Fprintln(e.out, "digest:", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "workspace for drill artifacts")
	return cmd
}

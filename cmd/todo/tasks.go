package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"todolist/internal/app"
	"todolist/internal/export"
	"todolist/internal/task"
	"todolist/internal/view"
)

func addCmd(e *env) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := task.ParseCategory(category)
			if err != nil {
				return err
			}
			return e.withStore(func(store *task.Store) error {
				list, err := store.Add(strings.Join(args, " "), cat)
				if errors.Is(err, task.ErrEmptyText) {
					return errors.New(app.MsgInputEmpty)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(e.out, list[len(list)-1].ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "today, weekly or monthly; empty files the task by creation date")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	var status, timeFilter string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := e.query(status, timeFilter)
			if err != nil {
				return err
			}
			return e.withStore(func(store *task.Store) error {
				m := view.Build(store.Tasks(), q, timeNow())
				if asJSON {
					b, err := export.Export(m, export.FormatJSON, timeNow())
					if err != nil {
						return err
					}
					_, err = e.out.Write(b)
					return err
				}
				printModel(e, m)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "all, pending or completed")
	cmd.Flags().StringVarP(&timeFilter, "time", "t", "", "today, weekly or monthly")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func printModel(e *env, m view.Model) {
	for _, it := range m.Items {
		check := "[ ]"
		if it.Completed {
			check = "[x]"
		}
		cat := it.Category
		if cat == "" {
			cat = "-"
		}
		fmt.Fprintf(e.out, "%s  %s  %-7s  %s\n", shortID(it.ID), check, cat, it.Plain)
	}
	fmt.Fprintf(e.out, "%d of %d\n", len(m.Items), m.Total)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func setCompletedCmd(e *env, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(func(store *task.Store) error {
				id, err := resolveID(store, args[0])
				if err != nil {
					return err
				}
				return store.Toggle(id, completed)
			})
		},
	}
}

func editCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(func(store *task.Store) error {
				id, err := resolveID(store, args[0])
				if err != nil {
					return err
				}
				err = store.Edit(id, strings.Join(args[1:], " "))
				if errors.Is(err, task.ErrEmptyText) {
					return errors.New(app.MsgTaskEmpty)
				}
				return err
			})
		},
	}
}

func rmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(func(store *task.Store) error {
				id, err := resolveID(store, args[0])
				if err != nil {
					return err
				}
				return store.Remove(id)
			})
		},
	}
}

func clearCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return e.withStore(func(store *task.Store) error {
				n := store.Len()
				if err := store.ClearAll(); err != nil {
					return err
				}
				fmt.Fprintf(e.out, "cleared %d tasks\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

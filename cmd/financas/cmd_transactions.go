package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"financas/internal/categories"
	"financas/internal/core"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"home"},
		Short:   "Show balance, totals and recent transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				ov, err := a.txs.Dashboard(cmd.Context())
				if err != nil {
					return err
				}
				return opts.out.Dashboard(ov)
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var typ, search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		Long: `List transactions, newest first.

--type narrows to income, expense or investment. --search matches the
description (case-insensitive) or the value text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := core.ParseFilterType(typ)
			if err != nil {
				return err
			}
			f := core.Filter{Type: ft, Search: search}

			return opts.withApp(cmd.Context(), false, func(a *app) error {
				l, err := a.txs.ListFiltered(cmd.Context(), f)
				if err != nil {
					return err
				}
				return opts.out.Transactions(l, f)
			})
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "all", "Filter: all, income, expense, investment")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var share bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				tx, err := a.txs.Find(cmd.Context(), id)
				if err != nil {
					return err
				}
				if share {
					fmt.Fprintln(cmd.OutOrStdout(), core.ShareText(tx, categories.Resolve(tx)))
					return nil
				}
				return opts.out.Transaction(tx)
			})
		},
	}

	cmd.Flags().BoolVar(&share, "share", false, "Print only the shareable text")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				answer, err := opts.prompt(cmd, fmt.Sprintf("Excluir transação #%d? Esta ação não pode ser desfeita. [s/N] ", id))
				if err != nil {
					return err
				}
				if !confirmed(answer) {
					return opts.out.Message("Cancelado")
				}
			}
			return opts.withApp(cmd.Context(), true, func(a *app) error {
				if err := a.txs.Delete(cmd.Context(), id); err != nil {
					return err
				}
				return opts.out.Deleted(id)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

package main

import (
	"github.com/spf13/cobra"

	"financas/internal/core"
)

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the category catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := core.ParseFilterType(typ)
			if err != nil {
				return err
			}
			types := []core.TypeID{core.Income, core.Expense, core.Investment}
			if t, ok := ft.TypeID(); ok {
				types = []core.TypeID{t}
			}
			return opts.out.Categories(types)
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "all", "Only one type: income, expense, investment")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"financas/internal/categories"
	"financas/internal/core"
)

var errNoValue = errors.New("--value is required")

// draftFlags are the fields every guided form shares.
type draftFlags struct {
	value       string
	description string
	date        string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.value, "value", "v", "", "Amount, e.g. 12.34 or 12,34")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD or DD/MM/YYYY (default today)")
}

// draft converts the flags into the masked form the drafts expect.
func (f *draftFlags) draft() (core.Draft, error) {
	if strings.TrimSpace(f.value) == "" {
		return core.Draft{}, errNoValue
	}
	v, err := core.ParseValue(f.value)
	if err != nil {
		return core.Draft{}, fmt.Errorf("%w %q", core.ErrInvalidValue, f.value)
	}
	if !v.Equal(v.Round(2)) {
		return core.Draft{}, fmt.Errorf("%w %q: at most two decimal places", core.ErrInvalidValue, f.value)
	}
	return core.Draft{Value: core.MaskDecimal(v), Description: f.description, Date: f.date}, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an income, expense or investment",
	}
	cmd.AddCommand(
		newAddIncomeCmd(opts),
		newAddExpenseCmd(opts),
		newAddInvestmentCmd(opts),
	)
	return cmd
}

func newAddIncomeCmd(opts *rootOptions) *cobra.Command {
	var (
		fl       draftFlags
		category int64
	)
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Add an income (default category: Salário)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkCategory(core.Income, category); err != nil {
				return err
			}
			d, err := fl.draft()
			if err != nil {
				return err
			}
			tx, err := core.IncomeDraft{Draft: d, CategoryID: category}.Build()
			if err != nil {
				return err
			}
			return submit(cmd, opts, tx)
		},
	}
	fl.register(cmd)
	cmd.Flags().Int64VarP(&category, "category", "c", 0, "Income category id (see 'financas categories --type income')")
	return cmd
}

func newAddExpenseCmd(opts *rootOptions) *cobra.Command {
	var (
		fl       draftFlags
		category int64
	)
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Add an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkCategory(core.Expense, category); err != nil {
				return err
			}
			d, err := fl.draft()
			if err != nil {
				return err
			}
			tx, err := core.ExpenseDraft{Draft: d, CategoryID: category}.Build()
			if err != nil {
				return err
			}
			return submit(cmd, opts, tx)
		},
	}
	fl.register(cmd)
	cmd.Flags().Int64VarP(&category, "category", "c", 0, "Expense category id (see 'financas categories --type expense')")
	return cmd
}

func newAddInvestmentCmd(opts *rootOptions) *cobra.Command {
	var (
		fl   draftFlags
		kind string
	)
	cmd := &cobra.Command{
		Use:   "investment",
		Short: "Add an investment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			d, err := fl.draft()
			if err != nil {
				return err
			}
			tx, err := core.InvestmentDraft{Draft: d, Kind: k}.Build()
			if err != nil {
				return err
			}
			return submit(cmd, opts, tx)
		},
	}
	fl.register(cmd)
	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.RendaFixa), "Kind: renda_fixa, renda_variavel, cripto, fundo")
	return cmd
}

func submit(cmd *cobra.Command, opts *rootOptions, tx core.NewTransaction) error {
	return opts.withApp(cmd.Context(), true, func(a *app) error {
		created, err := a.txs.Create(cmd.Context(), tx)
		if err != nil {
			return err
		}
		return opts.out.Created(tx.TypeID, created)
	})
}

// checkCategory rejects ids that do not belong to typeID. Zero means none.
func checkCategory(typeID core.TypeID, id int64) error {
	if id == 0 {
		return nil
	}
	for _, c := range categories.ByType(typeID) {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("category %d is not a %s category", id, strings.ToLower(typeID.String()))
}

func parseKind(s string) (core.InvestmentKind, error) {
	k := core.InvestmentKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range core.InvestmentKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown investment kind %q", s)
}

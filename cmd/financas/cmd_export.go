package main

import (
	"github.com/spf13/cobra"

	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/log"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		typ, search string
		replace     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions to Google Sheets",
		Long: `Append the (optionally filtered) transaction list to a Google Sheets tab.

Requires GOOGLE_SPREADSHEET_ID and a service account key in
GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON. The tab is
GOOGLE_SHEET_NAME. With --replace the tab is cleared and a header row
written first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.ValidateExport(); err != nil {
				return err
			}
			ft, err := core.ParseFilterType(typ)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return opts.withApp(ctx, false, func(a *app) error {
				l, err := a.txs.ListFiltered(ctx, core.Filter{Type: ft, Search: search})
				if err != nil {
					return err
				}
				if l.Stale {
					a.logger.WarnContext(ctx, "Exporting stored transactions, the API is unavailable", log.FieldStale, true)
				}

				sheets, err := export.NewSheetsClient(ctx, a.cfg.GoogleSpreadsheetID, export.Credentials{
					JSON: a.cfg.GoogleServiceAccountJSON,
					File: a.cfg.GoogleServiceAccountFile,
				})
				if err != nil {
					return err
				}
				res, err := export.NewExporter(sheets, a.cfg.GoogleSheetName, a.logger).
					Export(ctx, l.Transactions, export.Options{Replace: replace})
				if err != nil {
					return err
				}
				return opts.out.Exported(res)
			})
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "all", "Filter: all, income, expense, investment")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	cmd.Flags().BoolVar(&replace, "replace", false, "Clear the tab and write a header first")
	return cmd
}

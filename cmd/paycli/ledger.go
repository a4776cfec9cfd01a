package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"societypay/util/httpx"
)

func ledgerCmd(load func() (*Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "List your recorded payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.requireToken(); err != nil {
				return err
			}
			rows, err := newAPIClient(cfg.Server, cfg.Token, httpx.Client()).Ledger(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no payments yet")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tBILL\tAMOUNT\tRECEIPT\tUTR")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.Date.Local().Format("2006-01-02 15:04"), r.BillID, r.Amount.StringFixed(2), r.ReceiptNumber, r.TransactionID)
			}
			return w.Flush()
		},
	}
}

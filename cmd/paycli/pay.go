package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"societypay/service/poller"
	"societypay/util/httpx"
)

func payCmd(load func() (*Config, error)) *cobra.Command {
	var mobile string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "pay <billId>",
		Short: "Start a UPI payment for a bill and wait for confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.requireToken(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			api := newAPIClient(cfg.Server, cfg.Token, httpx.Client())
			order, err := api.CreateOrder(ctx, args[0], mobile, cfg.Redirect)
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order %s\nOpen this link to pay:\n  %s\n\nWaiting for confirmation (Ctrl-C to stop)...\n", order.OrderID, order.PaymentURL)

			logOut := io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			p := poller.New(api,
				poller.WithInterval(cfg.Interval),
				poller.WithTimeout(cfg.Timeout),
				poller.WithLogger(slog.New(slog.NewTextHandler(logOut, nil))),
			)
			state, err := p.Run(ctx, order.OrderID)
			fmt.Fprintln(out, messageFor(state))
			if errors.Is(err, poller.ErrCancelled) || errors.Is(err, poller.ErrTimedOut) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mobile, "mobile", "m", "", "UPI mobile number (10 digits)")
	_ = cmd.MarkFlagRequired("mobile")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each status check")
	return cmd
}

func messageFor(s poller.State) string {
	switch s {
	case poller.Settled:
		return "payment received"
	case poller.TimedOut:
		return "still waiting for confirmation; you may retry, you have not been charged twice"
	case poller.Cancelled:
		return "cancelled; you may retry"
	}
	return "payment status unknown"
}

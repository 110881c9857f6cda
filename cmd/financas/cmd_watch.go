package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"financas/internal/cli"
	"financas/internal/events"
	"financas/internal/log"
	"financas/internal/services"
)

var errNoBroker = errors.New("watch needs a reachable AMQP broker: set AMQP_URL")

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the dashboard whenever a transaction changes",
		Long: `Show the dashboard and refresh it every time a transaction is created
or deleted from any client publishing to the same AMQP queue. Stops on
Ctrl-C or when the session expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.EventsEnabled() {
				return errNoBroker
			}
			ctx, stop := cli.ShutdownContext(cmd.Context(), opts.logger)
			defer stop()

			return opts.withApp(ctx, true, func(a *app) error {
				consumer, ok := a.publisher.(*events.Client)
				if !ok {
					return errNoBroker
				}
				if a.cfg.CacheTTL > 0 {
					a.caches.StartCleanup(a.cfg.CacheTTL)
				}
				return watch(ctx, a, consumer, opts.out)
			})
		},
	}
}

// watch renders the dashboard once and again after every event. It returns
// nil on cancellation and the session error when the token is rejected.
func watch(ctx context.Context, a *app, consumer *events.Client, out *cli.Renderer) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	render := func() error {
		ov, err := a.txs.Dashboard(ctx)
		if err != nil {
			return err
		}
		return out.Dashboard(ov)
	}
	if err := render(); err != nil {
		return err
	}

	err := consumer.Consume(ctx, func(ctx context.Context, e events.TransactionEvent) error {
		a.logger.InfoContext(ctx, "Transaction changed",
			log.FieldEvent, string(e.Event), log.FieldTransactionID, e.TransactionID)
		a.txs.Invalidate(ctx)
		if out.Format() == cli.FormatText {
			_ = out.Message(fmt.Sprintf("\n> %s #%d", e.Event, e.TransactionID))
		}
		if err := render(); err != nil {
			if errors.Is(err, services.ErrNotAuthenticated) || errors.Is(err, services.ErrSessionExpired) {
				cancel(err)
				return nil
			}
			// Acked anyway: the next event renders fresh totals.
			a.logger.ErrorContext(ctx, "Failed to refresh dashboard", log.FieldError, err)
		}
		return nil
	})

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"

	"financas/internal/api"
	"financas/internal/auth"
	"financas/internal/backend"
	"financas/internal/cache"
	"financas/internal/config"
	"financas/internal/events"
	"financas/internal/log"
	"financas/internal/services"
)

// app is the wired object graph shared by the commands that talk to the API.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	backend   *backend.BackendResult
	publisher events.Publisher
	api       *api.Client
	auth      *auth.Service
	txs       *services.TransactionService
	caches    *cache.Manager
}

// newApp wires storage, the API client and the services. The AMQP
// publisher is only dialed when withEvents is set.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, withEvents bool) (*app, error) {
	factory := backend.NewFactory(logger)
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(logger))
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("create API client: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if withEvents && cfg.EventsEnabled() {
		publisher = factory.CreatePublisher(ctx, bcfg)
	}

	opts := []services.Option{
		services.WithCacheTTL(cfg.CacheSize, cfg.CacheTTL),
		services.WithPublisher(publisher),
		services.WithLogger(logger),
	}
	if res.Backend.Snapshots != nil {
		opts = append(opts, services.WithSnapshots(res.Backend.Snapshots))
	}
	txs := services.NewTransactionService(client, res.Backend.Sessions, opts...)

	caches := cache.NewManager(logger)
	if c := txs.Cleaner(); c != nil {
		caches.Register(c)
	}

	logger.DebugContext(ctx, "Application wired",
		log.FieldBackend, res.Backend.Type.String(),
		"api_url", client.BaseURL(),
		"events", withEvents && cfg.EventsEnabled())

	return &app{
		cfg:       cfg,
		logger:    logger,
		backend:   res,
		publisher: publisher,
		api:       client,
		auth:      auth.NewService(client, res.Backend.Sessions, logger),
		txs:       txs,
		caches:    caches,
	}, nil
}

func (a *app) Close() error {
	a.caches.Stop()
	return errors.Join(a.txs.Close(), a.backend.Close())
}

// withApp builds the app for one command run and closes it afterwards.
func (o *rootOptions) withApp(ctx context.Context, withEvents bool, fn func(*app) error) (err error) {
	a, err := newApp(ctx, o.cfg, o.logger, withEvents)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			o.logger.WarnContext(ctx, "Failed to release resources", log.FieldError, cerr)
		}
	}()
	return fn(a)
}

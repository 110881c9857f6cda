package backend

import (
	"context"
	"fmt"

	"financas/internal/config"
	"financas/internal/events"
	"financas/internal/log"
	"financas/internal/session"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(appConfig.SessionBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.SessionBackend)
	}
	return Config{
		Type:         bt,
		SessionFile:  appConfig.SessionFile,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.DebugContext(ctx, "Initialized memory backend")
		return &BackendResult{Backend: Backend{
			Type:      MemoryBackend,
			Sessions:  session.NewMemoryStore(),
			Snapshots: storage.NewMemorySnapshots(),
		}}, nil

	case FileBackend:
		if config.SessionFile == "" {
			return nil, fmt.Errorf("session file path is required for file backend")
		}
		f.logger.DebugContext(ctx, "Initialized file backend", "session_file", config.SessionFile)
		return &BackendResult{Backend: Backend{
			Type:     FileBackend,
			Sessions: session.NewFileStore(config.SessionFile),
		}}, nil

	case SQLiteBackend:
		if config.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.DebugContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &BackendResult{
			Backend: Backend{
				Type:      SQLiteBackend,
				Sessions:  session.NewKVStore(repo),
				Snapshots: repo,
			},
			Cleanup: repo.Close,
		}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}
}

// CreatePublisher implements Factory.CreatePublisher
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) events.Publisher {
	if config.AMQPURL == "" {
		return events.Nop{}
	}
	client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return events.Nop{}
	}
	f.logger.DebugContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"financas/internal/api"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/events"
	"financas/internal/log"
	"financas/internal/session"
	"financas/internal/storage"
)

const RecentCount = 5

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired, log in again")
	ErrNotFound         = errors.New("transaction not found")
)

// TransactionAPI is the part of the API client the service needs.
type TransactionAPI interface {
	ListTransactions(ctx context.Context, token string) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, token string, tx core.NewTransaction) (*core.Transaction, error)
	DeleteTransaction(ctx context.Context, token string, id int64) error
}

// SnapshotStore keeps the last list fetched per owner for offline reads.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, owner string, snap storage.Snapshot) error
	LoadSnapshot(ctx context.Context, owner string) (storage.Snapshot, bool, error)
	DeleteSnapshot(ctx context.Context, owner string) error
}

// Listing is a transaction list and where it came from. Stale lists were
// served from the snapshot store because the API was unavailable.
type Listing struct {
	Transactions []core.Transaction
	FetchedAt    time.Time
	Stale        bool
}

// Overview is what the home screen shows.
type Overview struct {
	User      *core.User
	Totals    core.Dashboard
	Recent    []core.Transaction
	Count     int
	FetchedAt time.Time
	Stale     bool
}

type cachedList struct {
	txs       []core.Transaction
	fetchedAt time.Time
}

// TransactionService reads and writes transactions through the API with a
// per-session cache, offline snapshots and change events.
type TransactionService struct {
	api       TransactionAPI
	sessions  session.Store
	cache     cache.Cache[cachedList]
	snapshots SnapshotStore
	publisher events.Publisher
	logger    *log.Logger
	slog      *log.StructuredLogger
	group     singleflight.Group
	now       func() time.Time
}

type Option func(*TransactionService)

// WithCacheTTL enables the list cache with the given size and TTL.
func WithCacheTTL(size int, ttl time.Duration) Option {
	return func(s *TransactionService) {
		if ttl > 0 {
			s.cache = cache.NewLRUCache[cachedList](size, ttl)
		}
	}
}

func WithSnapshots(store SnapshotStore) Option {
	return func(s *TransactionService) { s.snapshots = store }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *TransactionService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *TransactionService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentTransaction)
		}
	}
}

func NewTransactionService(client TransactionAPI, sessions session.Store, opts ...Option) *TransactionService {
	s := &TransactionService{
		api:       client,
		sessions:  sessions,
		publisher: events.Nop{},
		logger:    log.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.slog = log.NewStructuredLogger(s.logger)
	return s
}

// Cleaner exposes the list cache for periodic expiry, nil when caching is off.
func (s *TransactionService) Cleaner() cache.Cleaner {
	if c, ok := s.cache.(cache.Cleaner); ok {
		return c
	}
	return nil
}

func (s *TransactionService) requireSession(ctx context.Context) (session.Session, error) {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("read session: %w", err)
	}
	if !sess.Valid() {
		return session.Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

// expire drops the local session after the API rejected its token.
func (s *TransactionService) expire(ctx context.Context, sess session.Session, cause error) error {
	s.logger.WarnContext(ctx, "Token rejected, clearing session", log.FieldUserEmail, userEmail(sess))
	if s.cache != nil {
		s.cache.Delete(sess.CacheKey())
	}
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear session", log.FieldError, err)
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// List returns every transaction of the signed-in user in server order.
func (s *TransactionService) List(ctx context.Context) (Listing, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return Listing{}, err
	}
	return s.list(ctx, sess)
}

func (s *TransactionService) list(ctx context.Context, sess session.Session) (Listing, error) {
	key := sess.CacheKey()

	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return Listing{Transactions: clone(hit.txs), FetchedAt: hit.fetchedAt}, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, sess)
	})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return Listing{}, s.expire(ctx, sess, err)
		}
		if api.IsUnavailable(err) {
			if listing, ok := s.fromSnapshot(ctx, sess); ok {
				s.logger.WarnContext(ctx, "API unavailable, serving stored transactions",
					log.FieldError, err, log.FieldCount, len(listing.Transactions), log.FieldStale, true)
				return listing, nil
			}
		}
		return Listing{}, fmt.Errorf("list transactions: %w", err)
	}

	entry := v.(cachedList)
	if shared {
		s.logger.DebugContext(ctx, "Shared in-flight transaction fetch")
	}
	return Listing{Transactions: clone(entry.txs), FetchedAt: entry.fetchedAt}, nil
}

func (s *TransactionService) fetch(ctx context.Context, sess session.Session) (cachedList, error) {
	txs, err := s.api.ListTransactions(ctx, sess.Token)
	if err != nil {
		return cachedList{}, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	entry := cachedList{txs: txs, fetchedAt: s.now()}

	if s.cache != nil {
		s.cache.Set(sess.CacheKey(), entry)
	}
	if s.snapshots != nil {
		snap := storage.Snapshot{Transactions: txs, FetchedAt: entry.fetchedAt}
		if err := s.snapshots.SaveSnapshot(ctx, sess.Owner(), snap); err != nil {
			s.slog.LogError(ctx, "Failed to store snapshot", err, log.OpList, nil)
		}
	}

	s.logger.DebugContext(ctx, "Fetched transactions", log.FieldCount, len(txs), log.FieldOperation, log.OpList)
	return entry, nil
}

func (s *TransactionService) fromSnapshot(ctx context.Context, sess session.Session) (Listing, bool) {
	if s.snapshots == nil {
		return Listing{}, false
	}
	snap, ok, err := s.snapshots.LoadSnapshot(ctx, sess.Owner())
	if err != nil {
		s.slog.LogError(ctx, "Failed to load snapshot", err, log.OpList, nil)
		return Listing{}, false
	}
	if !ok {
		return Listing{}, false
	}
	return Listing{Transactions: snap.Transactions, FetchedAt: snap.FetchedAt, Stale: true}, true
}

// ListFiltered applies f to the list, most recent first.
func (s *TransactionService) ListFiltered(ctx context.Context, f core.Filter) (Listing, error) {
	listing, err := s.List(ctx)
	if err != nil {
		return Listing{}, err
	}
	listing.Transactions = core.ApplyFilter(listing.Transactions, f)
	return listing, nil
}

// Dashboard computes the totals over the whole list and the first
// RecentCount transactions.
func (s *TransactionService) Dashboard(ctx context.Context) (Overview, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return Overview{}, err
	}
	listing, err := s.list(ctx, sess)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		User:      sess.User,
		Totals:    core.CalculateDashboard(listing.Transactions),
		Recent:    core.Recent(listing.Transactions, RecentCount),
		Count:     len(listing.Transactions),
		FetchedAt: listing.FetchedAt,
		Stale:     listing.Stale,
	}, nil
}

// Find returns the transaction with id from the current list.
func (s *TransactionService) Find(ctx context.Context, id int64) (core.Transaction, error) {
	listing, err := s.List(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range listing.Transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Create validates and submits tx. The created record is returned when the
// API echoes it.
func (s *TransactionService) Create(ctx context.Context, tx core.NewTransaction) (*core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.api.CreateTransaction(ctx, sess.Token, tx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, s.expire(ctx, sess, err)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.invalidate(sess)

	var id int64
	if created != nil {
		id = created.ID
	}
	s.slog.LogTransactionCreated(ctx, id, int(tx.TypeID), tx.Value, tx.Description)

	if err := s.publisher.Publish(ctx, events.NewCreatedEvent(id, tx)); err != nil {
		// The API already holds the transaction.
		s.slog.LogError(ctx, "Failed to publish event", err, log.OpPublish, log.NewFields().WithTransaction(id, int(tx.TypeID), tx.Value, tx.Description))
	}
	return created, nil
}

// Delete removes the transaction with id.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return err
	}

	if err := s.api.DeleteTransaction(ctx, sess.Token, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return s.expire(ctx, sess, err)
		}
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.invalidate(sess)
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)

	if err := s.publisher.Publish(ctx, events.NewDeletedEvent(id)); err != nil {
		s.slog.LogError(ctx, "Failed to publish event", err, log.OpPublish, log.NewFields().WithTransaction(id, 0, "", ""))
	}
	return nil
}

// Invalidate drops the cached list of the current session so the next
// read goes to the API.
func (s *TransactionService) Invalidate(ctx context.Context) {
	if sess, err := s.sessions.Get(ctx); err == nil && sess.Valid() {
		s.invalidate(sess)
	}
}

func (s *TransactionService) invalidate(sess session.Session) {
	if s.cache != nil {
		s.cache.Delete(sess.CacheKey())
	}
}

// Forget drops everything stored locally for the current session. Called
// on logout.
func (s *TransactionService) Forget(ctx context.Context) error {
	sess, err := s.sessions.Get(ctx)
	if err != nil || !sess.Valid() {
		return err
	}
	s.invalidate(sess)
	if s.snapshots != nil {
		if err := s.snapshots.DeleteSnapshot(ctx, sess.Owner()); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	return nil
}

// Close releases the publisher.
func (s *TransactionService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

func clone(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}

func userEmail(sess session.Session) string {
	if sess.User == nil {
		return ""
	}
	return sess.User.Email
}

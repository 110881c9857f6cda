// Package session persists the signed-in user and the bearer token between
// runs under the keys "@user" and "@token".
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"financas/internal/core"
)

const (
	KeyUser  = "@user"
	KeyToken = "@token"
)

var ErrCorrupt = errors.New("session data is corrupt")

// Session is the persisted authentication state.
type Session struct {
	User  *core.User
	Token string
}

// Valid reports whether both the user and a non-empty token are present.
func (s Session) Valid() bool {
	return s.User != nil && strings.TrimSpace(s.Token) != ""
}

// CacheKey identifies the session without exposing the token.
func (s Session) CacheKey() string {
	sum := sha256.Sum256([]byte(s.Token))
	return hex.EncodeToString(sum[:8])
}

// Owner names the user the session belongs to. Falls back to CacheKey
// when the user has no email.
func (s Session) Owner() string {
	if s.User != nil && s.User.Email != "" {
		return strings.ToLower(s.User.Email)
	}
	return s.CacheKey()
}

// Store keeps a single session. Get on an empty store returns a zero
// Session and no error.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// KV is the string key/value primitive the store backends share.
type KV interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValues(ctx context.Context, values map[string]string) error
	DeleteValues(ctx context.Context, keys ...string) error
}

// KVStore adapts a KV into a Store.
type KVStore struct {
	kv KV
}

func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Save(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("save session: user and token are required")
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.kv.SetValues(ctx, map[string]string{KeyUser: string(user), KeyToken: sess.Token})
}

// Get returns the stored session. Half written sessions come back as a
// zero Session; an undecodable user is reported as ErrCorrupt.
func (s *KVStore) Get(ctx context.Context) (Session, error) {
	rawUser, okUser, err := s.kv.GetValue(ctx, KeyUser)
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", KeyUser, err)
	}
	token, okToken, err := s.kv.GetValue(ctx, KeyToken)
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", KeyToken, err)
	}
	if !okUser || !okToken {
		return Session{}, nil
	}
	var user core.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return Session{User: &user, Token: token}, nil
}

func (s *KVStore) Clear(ctx context.Context) error {
	return s.kv.DeleteValues(ctx, KeyUser, KeyToken)
}

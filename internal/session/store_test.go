package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"financas/internal/core"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Get(ctx)
			if err != nil || got.Valid() {
				t.Fatalf("empty store: %+v, %v", got, err)
			}

			want := Session{User: &core.User{ID: 7, Name: "Ana", Email: "ana@example.com"}, Token: "tok"}
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err = store.Get(ctx)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("session mismatch (-want +got):\n%s", diff)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("second Clear: %v", err)
			}
			got, _ = store.Get(ctx)
			if got.Valid() {
				t.Fatalf("expected cleared session, got %+v", got)
			}
		})
	}
}

func TestSaveRejectsIncompleteSession(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(context.Background(), Session{Token: "x"}); err == nil {
		t.Fatalf("expected error without user")
	}
	if err := store.Save(context.Background(), Session{User: &core.User{}, Token: " "}); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestFileStorePermissionsAndCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.Save(ctx, Session{User: &core.User{Email: "a@b.c"}, Token: "t"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o", perm)
	}

	if err := os.WriteFile(path, []byte(`{"@user": "{not json", "@token": "t"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestSessionKeys(t *testing.T) {
	s := Session{User: &core.User{Email: "Ana@Example.com"}, Token: "secret"}
	if s.Owner() != "ana@example.com" {
		t.Fatalf("Owner = %q", s.Owner())
	}
	anon := Session{Token: "secret"}
	if anon.Owner() != s.CacheKey() || len(s.CacheKey()) != 16 {
		t.Fatalf("CacheKey = %q", s.CacheKey())
	}
}

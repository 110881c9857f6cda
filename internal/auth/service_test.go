package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/session"
)

type fakeAPI struct {
	loginRes   api.LoginResult
	loginErr   error
	verifyErr  error
	verifyCall int
	lastToken  string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Verify(ctx context.Context, token string) error {
	f.verifyCall++
	f.lastToken = token
	return f.verifyErr
}

func TestLoginSavesSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	fake := &fakeAPI{loginRes: api.LoginResult{User: core.User{ID: 1, Email: "ana@example.com"}, Token: "jwt"}}
	svc := NewService(fake, store, nil)

	user, err := svc.Login(ctx, " ana@example.com ", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	sess, _ := store.Get(ctx)
	if !sess.Valid() || sess.Token != "jwt" {
		t.Fatalf("session not saved: %+v", sess)
	}
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		email   string
		pass    string
		err     error
		wantMsg string
	}{
		{"missing email", "", "pw", nil, ErrMissingCredentials.Error()},
		{"missing password", "a@b.c", "", nil, ErrMissingCredentials.Error()},
		{"api message", "a@b.c", "pw", &api.APIError{Op: "login", StatusCode: 200, Message: "Senha incorreta"}, "Senha incorreta"},
		{"default message", "a@b.c", "pw", &api.APIError{Op: "login", StatusCode: 401}, "Erro no login"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			svc := NewService(&fakeAPI{loginErr: tc.err}, store, nil)
			_, err := svc.Login(ctx, tc.email, tc.pass)
			if err == nil || err.Error() != tc.wantMsg {
				t.Fatalf("got %v, want %q", err, tc.wantMsg)
			}
			if sess, _ := store.Get(ctx); sess.Valid() {
				t.Fatalf("session must not be saved on failure")
			}
		})
	}
}

func TestLoginTransportError(t *testing.T) {
	svc := NewService(&fakeAPI{loginErr: api.ErrUnreachable}, session.NewMemoryStore(), nil)
	_, err := svc.Login(context.Background(), "a@b.c", "pw")
	var loginErr *LoginError
	if errors.As(err, &loginErr) || !errors.Is(err, api.ErrUnreachable) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()
	valid := session.Session{User: &core.User{Email: "ana@example.com"}, Token: "jwt"}

	cases := []struct {
		name      string
		stored    *session.Session
		verifyErr error
		want      bool
		calls     int
	}{
		{"no session", nil, nil, false, 0},
		{"valid token", &valid, nil, true, 1},
		{"expired token", &valid, &api.APIError{Op: "verify", StatusCode: http.StatusUnauthorized}, false, 1},
		{"network error", &valid, api.ErrUnreachable, false, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if tc.stored != nil {
				if err := store.Save(ctx, *tc.stored); err != nil {
					t.Fatal(err)
				}
			}
			fake := &fakeAPI{verifyErr: tc.verifyErr}
			got := NewService(fake, store, nil).VerifySession(ctx)
			if got.Valid != tc.want || fake.verifyCall != tc.calls {
				t.Fatalf("got %+v after %d calls", got, fake.verifyCall)
			}
			if got.Valid && (got.Token != "jwt" || fake.lastToken != "jwt" || got.User.Email != "ana@example.com") {
				t.Fatalf("unexpected verification %+v", got)
			}
			if !got.Valid && got.User != nil {
				t.Fatalf("invalid result must not carry a user")
			}
		})
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	store.Save(ctx, session.Session{User: &core.User{Email: "a"}, Token: "t"})
	svc := NewService(&fakeAPI{}, store, nil)
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if sess, _ := store.Get(ctx); sess.Valid() {
		t.Fatalf("session not cleared")
	}
}

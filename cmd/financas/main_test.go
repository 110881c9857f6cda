package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/services"
)

// fakeAPI is a minimal in-memory version of the finance REST API.
type fakeAPI struct {
	mu      sync.Mutex
	token   string
	nextID  int64
	txs     []map[string]any
	created []core.NewTransaction
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	f := &fakeAPI{token: "tok-1", nextID: 3, txs: []map[string]any{
		{"id": 1, "value": "1000.00", "typeId": 1, "description": "Salário", "date": "2025-05-05", "status": true, "categoryId": 1},
		{"id": 2, "value": "42.50", "typeId": 2, "description": "Mercado", "date": "2025-05-06", "status": true, "categoryId": 101},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": true, "message": "Credenciais inválidas"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": 7, "name": "Ana", "email": body["email"]},
			"token": f.token,
		})
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			ok := r.Header.Get("Authorization") == "Bearer "+f.token
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": true, "message": "Token inválido"})
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("GET /auth/verify", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": false})
	}))
	mux.HandleFunc("GET /transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.txs})
	}))
	mux.HandleFunc("POST /transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		var in core.NewTransaction
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, in)
		tx := map[string]any{"id": f.nextID, "value": in.Value, "typeId": int(in.TypeID), "description": in.Description, "date": in.Date, "status": in.Status}
		f.nextID++
		f.txs = append([]map[string]any{tx}, f.txs...)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tx})
	}))
	mux.HandleFunc("DELETE /transactions/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, tx := range f.txs {
			if r.PathValue("id") == jsonID(tx["id"]) {
				f.txs = append(f.txs[:i], f.txs[i+1:]...)
				break
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"error": false})
	}))
	mux.HandleFunc("POST /rotate", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.token = "tok-2"
		f.mu.Unlock()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonID(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// setupEnv points the CLI at srv with a file session in a temp dir.
func setupEnv(t *testing.T, srv *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FINANCAS_API_URL", srv.URL)
	t.Setenv("FINANCAS_SESSION_BACKEND", "file")
	t.Setenv("FINANCAS_SESSION_FILE", filepath.Join(dir, "session.json"))
	t.Setenv("FINANCAS_LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("financas %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestLoginDashboardLogout(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)

	if _, err := run(t, "", "dashboard"); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("dashboard before login: err = %v", err)
	}

	out := mustRun(t, "login", "--email", "ana@example.com", "--password", "secret")
	if !strings.Contains(out, "Logged in as Ana <ana@example.com>") {
		t.Fatalf("login output = %q", out)
	}

	out = mustRun(t, "dashboard")
	for _, want := range []string{"Olá, Ana", "R$ 957,50", "Mercado"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "session")
	if !strings.Contains(out, "Logged in as Ana") {
		t.Errorf("session output = %q", out)
	}

	mustRun(t, "logout")
	out = mustRun(t, "session")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("session after logout = %q", out)
	}
}

func TestLoginPromptsAndRefusal(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)

	_, err := run(t, "ana@example.com\nwrong\n", "login")
	var loginErr *auth.LoginError
	if !errors.As(err, &loginErr) || loginErr.Message != "Credenciais inválidas" {
		t.Fatalf("expected refused login, got %v", err)
	}
	if describe(err) != "Credenciais inválidas" {
		t.Errorf("describe = %q", describe(err))
	}

	out, err := run(t, "ana@example.com\nsecret\n", "login")
	if err != nil || !strings.Contains(out, "Ana") {
		t.Fatalf("prompted login: out=%q err=%v", out, err)
	}
}

func TestListShowAndJSON(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)
	mustRun(t, "login", "--email", "ana@example.com", "--password", "secret")

	out := mustRun(t, "list", "--type", "expense")
	if !strings.Contains(out, "Despesas (1)") || strings.Contains(out, "Salário") {
		t.Errorf("filtered list:\n%s", out)
	}

	out = mustRun(t, "-o", "json", "list", "--search", "SAL")
	var got struct {
		Count        int `json:"count"`
		Transactions []struct {
			ID       int64  `json:"id"`
			Category string `json:"category"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("json list: %v\n%s", err, out)
	}
	if got.Count != 1 || got.Transactions[0].ID != 1 || got.Transactions[0].Category != "Salário" {
		t.Errorf("json list = %+v", got)
	}

	out = mustRun(t, "show", "2", "--share")
	if !strings.HasPrefix(out, "📊 Detalhes da Transação:") || !strings.Contains(out, "Alimentação") {
		t.Errorf("share text:\n%s", out)
	}

	if _, err := run(t, "", "show", "99"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("show missing id: %v", err)
	}
	if _, err := run(t, "", "show", "abc"); err == nil {
		t.Errorf("expected invalid id error")
	}
}

func TestAddAndDelete(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)
	mustRun(t, "login", "--email", "ana@example.com", "--password", "secret")

	out := mustRun(t, "add", "expense", "--value", "12,5", "--description", "Café", "--date", "01/06/2025", "--category", "101")
	if !strings.Contains(out, "Despesa adicionada com sucesso! (#3)") {
		t.Errorf("add expense output = %q", out)
	}
	mustRun(t, "add", "investment", "--value", "100", "--description", "Tesouro", "--kind", "renda_fixa")

	out = mustRun(t, "-o", "json", "show", "4")
	var view struct {
		Description string `json:"description"`
		Value       string `json:"value"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("show json: %v", err)
	}
	if view.Description != "Renda Fixa - Tesouro" || view.Value != "100.00" {
		t.Errorf("investment = %+v", view)
	}

	out = mustRun(t, "-o", "json", "show", "3")
	if !strings.Contains(out, `"value": "12.50"`) || !strings.Contains(out, `"date": "2025-06-01"`) {
		t.Errorf("expense json:\n%s", out)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing value", []string{"add", "income", "--description", "x"}},
		{"bad value", []string{"add", "income", "--value", "abc", "--description", "x"}},
		{"three decimals", []string{"add", "expense", "--value", "12.345", "--description", "x"}},
		{"empty description", []string{"add", "income", "--value", "1"}},
		{"wrong category type", []string{"add", "income", "--value", "1", "--description", "x", "--category", "101"}},
		{"unknown kind", []string{"add", "investment", "--value", "1", "--description", "x", "--kind", "ouro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}

	out, err := run(t, "n\n", "delete", "3")
	if err != nil || !strings.Contains(out, "Cancelado") {
		t.Fatalf("declined delete: out=%q err=%v", out, err)
	}
	out = mustRun(t, "delete", "3", "--yes")
	if !strings.Contains(out, "#3 excluída") {
		t.Errorf("delete output = %q", out)
	}
	if _, err := run(t, "", "show", "3"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("deleted transaction still listed: %v", err)
	}
}

func TestExpiredTokenClearsSession(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)
	mustRun(t, "login", "--email", "ana@example.com", "--password", "secret")

	resp, err := http.Post(srv.URL+"/rotate", "application/json", nil)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	resp.Body.Close()

	_, err = run(t, "", "dashboard")
	if !errors.Is(err, services.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if describe(err) != "session expired, log in again" {
		t.Errorf("describe = %q", describe(err))
	}
	if _, err := run(t, "", "dashboard"); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Errorf("session should be cleared after a 401, got %v", err)
	}
}

func TestCategoriesOffline(t *testing.T) {
	t.Setenv("FINANCAS_SESSION_BACKEND", "memory")
	t.Setenv("FINANCAS_LOG_LEVEL", "error")

	out := mustRun(t, "categories", "--type", "expense")
	if !strings.Contains(out, "101") || strings.Contains(out, "Salário") {
		t.Errorf("categories output:\n%s", out)
	}
	if _, err := run(t, "", "categories", "--type", "gifts"); err == nil {
		t.Errorf("expected unknown filter error")
	}
	if _, err := run(t, "", "-o", "xml", "categories"); err == nil {
		t.Errorf("expected unknown format error")
	}
}

func TestWatchAndExportNeedConfiguration(t *testing.T) {
	srv := newFakeAPI(t)
	setupEnv(t, srv)
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := run(t, "", "watch"); !errors.Is(err, errNoBroker) {
		t.Errorf("watch without broker: %v", err)
	}
	if _, err := run(t, "", "export"); err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("export without sheet: %v", err)
	}
}

func TestHelpers(t *testing.T) {
	if id, err := parseID("#12"); err != nil || id != 12 {
		t.Errorf("parseID(#12) = %d, %v", id, err)
	}
	if _, err := parseID("0"); err == nil {
		t.Errorf("parseID(0) should fail")
	}
	for answer, want := range map[string]bool{"s": true, "Sim": true, "y": true, "": false, "não": false} {
		if confirmed(answer) != want {
			t.Errorf("confirmed(%q) != %v", answer, want)
		}
	}
	for in, want := range map[string]string{"12.340": "12,34", "12,5": "12,50", "7": "7,00"} {
		d, err := (&draftFlags{value: in}).draft()
		if err != nil || d.Value != want {
			t.Errorf("draft(%q) = %q, %v", in, d.Value, err)
		}
	}
	if _, err := (&draftFlags{value: "12,345"}).draft(); !errors.Is(err, core.ErrInvalidValue) {
		t.Errorf("draft(12,345) should be rejected, got %v", err)
	}
	if err := checkCategory(core.Expense, 0); err != nil {
		t.Errorf("zero category should pass: %v", err)
	}
}

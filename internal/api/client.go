// Package api is the REST client for the finance backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

const (
	DefaultTimeout = 15 * time.Second

	// Responses larger than this are rejected.
	maxBodyBytes = 8 << 20
)

// errDecode marks a 2xx response whose body is not a JSON envelope.
var errDecode = errors.New("decode response")

// envelope is the common response body. Login responses carry user and
// token at the top level, every other endpoint uses data.
type envelope struct {
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	User    *core.User      `json:"user"`
	Token   string          `json:"token"`
}

// Client talks to the REST API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client; its transport is used as
// is, without tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentAPI)
		}
	}
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		logger:  log.Discard(),
	}
	c.http = &http.Client{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Transport == nil {
		c.http.Transport = NewTraceTransport(nil, c.logger)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// LoginResult is the authenticated user and the bearer token.
type LoginResult struct {
	User  core.User
	Token string
}

// Login posts the credentials to /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return LoginResult{}, err
	}
	if env.User == nil || env.Token == "" {
		return LoginResult{}, &APIError{Op: "login", StatusCode: http.StatusOK, Message: "response without user or token"}
	}
	return LoginResult{User: *env.User, Token: env.Token}, nil
}

// Verify checks token against /auth/verify. A nil error means the token is
// accepted. Any 2xx counts, whatever the body.
func (c *Client) Verify(ctx context.Context, token string) error {
	_, err := c.do(ctx, "verify", http.MethodGet, "/auth/verify", token, nil)
	return ignoreBody(err)
}

// ListTransactions returns every transaction of the token owner, in server
// order. A missing data field yields an empty slice.
func (c *Client) ListTransactions(ctx context.Context, token string) ([]core.Transaction, error) {
	env, err := c.do(ctx, "list transactions", http.MethodGet, "/transactions", token, nil)
	if err != nil {
		return nil, err
	}
	txs := []core.Transaction{}
	if isNull(env.Data) {
		return txs, nil
	}
	if err := json.Unmarshal(env.Data, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: decode data: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// CreateTransaction posts tx. The created transaction is returned when the
// API echoes it back, nil otherwise.
func (c *Client) CreateTransaction(ctx context.Context, token string, tx core.NewTransaction) (*core.Transaction, error) {
	env, err := c.do(ctx, "create transaction", http.MethodPost, "/transactions", token, tx)
	if err != nil {
		return nil, err
	}
	if isNull(env.Data) || !bytes.HasPrefix(bytes.TrimSpace(env.Data), []byte("{")) {
		return nil, nil
	}
	var created core.Transaction
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, fmt.Errorf("create transaction: decode data: %w", err)
	}
	return &created, nil
}

// DeleteTransaction removes the transaction with id.
func (c *Client) DeleteTransaction(ctx context.Context, token string, id int64) error {
	path := "/transactions/" + strconv.FormatInt(id, 10)
	_, err := c.do(ctx, "delete transaction", http.MethodDelete, path, token, nil)
	return ignoreBody(err)
}

// ignoreBody drops decode failures for endpoints whose body is unused.
func ignoreBody(err error) error {
	if errors.Is(err, errDecode) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in any) (envelope, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return envelope{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return envelope{}, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return envelope{}, fmt.Errorf("%s: %w: %v", op, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return envelope{}, fmt.Errorf("%s: %w: read body: %v", op, ErrUnreachable, err)
	}

	var (
		env       envelope
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{}, &APIError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return envelope{}, fmt.Errorf("%s: %w: %w", op, errDecode, decodeErr)
	}
	if env.Error {
		return envelope{}, &APIError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env, nil
}

func isNull(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

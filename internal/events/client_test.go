package events

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue", logger: log.Discard()}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit breaker should be open after max failures")
	}

	err := client.Publish(context.Background(), NewDeletedEvent(1))
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should be half-open after timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("state should be StateHalfOpen after timeout")
	}

	client.recordSuccess()
	if atomic.LoadInt32(&client.state) != StateClosed || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should reset the breaker")
	}
}

func TestPublishRespectsCancellation(t *testing.T) {
	client := &Client{exchangeName: "x", queueName: "q", logger: log.Discard()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Publish(ctx, NewDeletedEvent(1)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEventJSON(t *testing.T) {
	e := NewCreatedEvent(12, core.NewTransaction{Value: "45.90", TypeID: core.Expense})
	b, err := e.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"event":"transaction.created"`) || !strings.Contains(string(b), `"transactionId":12`) {
		t.Fatalf("unexpected json %s", b)
	}
	got, err := EventFromJSON(b)
	if err != nil || got.TypeID != core.Expense || got.Value != "45.90" {
		t.Fatalf("decode: %+v, %v", got, err)
	}

	if _, err := EventFromJSON([]byte(`{"event":"transaction.updated"}`)); err == nil {
		t.Fatal("unknown events must be rejected")
	}
	if _, err := EventFromJSON([]byte(`{"transactionId":"x"}`)); err == nil {
		t.Fatal("invalid JSON must be rejected")
	}
}

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
	err      error
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return f.err }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return f.err
}

func TestDispatch(t *testing.T) {
	ok := func(context.Context, TransactionEvent) error { return nil }
	fail := func(context.Context, TransactionEvent) error { return errors.New("busy") }
	valid, _ := NewDeletedEvent(3).ToJSON()

	cases := []struct {
		name    string
		body    []byte
		handler Handler
		want    fakeAck
	}{
		{"handled", valid, ok, fakeAck{acked: true}},
		{"handler error requeues", valid, fail, fakeAck{nacked: true, requeued: true}},
		{"malformed dropped", []byte("{"), ok, fakeAck{nacked: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ack fakeAck
			dispatch(context.Background(), log.Discard(), tc.body, &ack, tc.handler)
			if ack != tc.want {
				t.Fatalf("got %+v, want %+v", ack, tc.want)
			}
		})
	}
}

func TestDispatchLogsAckFailures(t *testing.T) {
	ok := func(context.Context, TransactionEvent) error { return nil }
	fail := func(context.Context, TransactionEvent) error { return errors.New("busy") }
	valid, _ := NewDeletedEvent(9).ToJSON()

	cases := []struct {
		name    string
		body    []byte
		handler Handler
		want    string
	}{
		{"ack", valid, ok, "Failed to ack message"},
		{"requeue", valid, fail, "Failed to nack message"},
		{"drop", []byte("{"), ok, "Failed to nack message"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.New(log.Config{Component: log.ComponentAMQP, Handler: slog.NewTextHandler(&buf, nil)})
			ack := fakeAck{err: errors.New("channel closed")}
			dispatch(context.Background(), logger, tc.body, &ack, tc.handler)
			if out := buf.String(); !strings.Contains(out, tc.want) || !strings.Contains(out, "channel closed") {
				t.Fatalf("log output %q does not report %q", out, tc.want)
			}
		})
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), NewDeletedEvent(1)); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

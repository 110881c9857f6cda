package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"financas/internal/log"
)

const HeaderRequestID = "X-Request-ID"

// TraceTransport stamps every outbound request with a request id and logs
// its start and completion.
type TraceTransport struct {
	Base   http.RoundTripper
	logger *log.StructuredLogger
	raw    *log.Logger
}

func NewTraceTransport(base http.RoundTripper, logger *log.Logger) *TraceTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAPI)
	return &TraceTransport{Base: base, logger: log.NewStructuredLogger(logger), raw: logger}
}

func (t *TraceTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	id := r.Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	ctx := log.WithRequestID(r.Context(), id)
	r = r.Clone(ctx)
	r.Header.Set(HeaderRequestID, id)

	t.logger.LogHTTPStart(ctx, r)

	resp, err := t.Base.RoundTrip(r)
	if err != nil {
		t.raw.WarnContext(ctx, "API request failed",
			log.FieldRequestID, id,
			log.FieldMethod, r.Method,
			log.FieldURL, r.URL.Path,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldError, err)
		return nil, err
	}

	t.logger.LogHTTPEnd(ctx, r, resp.StatusCode, time.Since(start))
	return resp, nil
}

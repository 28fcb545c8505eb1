package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit", NewTransientError(errors.New("throttled"), 429), true},
		{"wrapped with eris", eris.Wrap(NewTransientError(errors.New("bad gateway"), 502), "edgar: submissions"), true},
		{"wrapped with fmt", fmt.Errorf("fetch: %w", NewTransientError(errors.New("x"), 503)), true},
		{"net timeout", fmt.Errorf("get: %w", timeoutErr{}), true},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"flattened message", errors.New("Get \"https://www.sec.gov\": tls handshake timeout"), true},
		{"permanent", errors.New("edgar: document not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 301, 400, 403, 404, 501} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("service unavailable")
	te := NewTransientError(inner, 503)

	assert.Equal(t, "service unavailable", te.Error())
	assert.True(t, errors.Is(te, inner))
	assert.Equal(t, 503, te.StatusCode)
}

func TestRetryAfterOf(t *testing.T) {
	te := NewTransientError(errors.New("slow down"), 429)
	te.RetryAfter = 3 * time.Second

	assert.Equal(t, 3*time.Second, RetryAfterOf(eris.Wrap(te, "fetch")))
	assert.Zero(t, RetryAfterOf(errors.New("other")))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 10*time.Second, ParseRetryAfter("10", now))
	assert.Equal(t, 90*time.Second, ParseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now))
	assert.Zero(t, ParseRetryAfter("", now))
	assert.Zero(t, ParseRetryAfter("-5", now))
	assert.Zero(t, ParseRetryAfter("soon", now))
	assert.Zero(t, ParseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
}

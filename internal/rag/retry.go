package rag

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/schema"
)

// ErrTransient marks an error as safe to retry.
var ErrTransient = errors.New("transient upstream error")

// RetryPolicy bounds retries of the generation call. Nothing else in the
// query path is retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 4 * time.Second,
	MaxInterval:     10 * time.Second,
}

// Do runs op until it succeeds, fails with a non-transient error, or the
// attempts are used up.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, op func(context.Context) (*schema.Message, error)) (*schema.Message, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)

	var out *schema.Message
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		msg, err := op(ctx)
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = msg
		return nil
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("generation failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var statusCodePattern = regexp.MustCompile(`status(?: code)?[:=\s]+(\d{3})`)

// IsTransient reports whether err looks like a timeout, throttling or a
// server-side failure of the model endpoint.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if m := statusCodePattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code == 429 || code >= 500
	}
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "connection reset")
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/domain/entity"
)

var ErrPollExhausted = errors.New("payment status polling exhausted")

// DefaultPollInterval stands in for a non-positive PollPolicy.Interval.
const DefaultPollInterval = 3 * time.Second

// PollPolicy bounds the payment status loop. Zero Timeout or zero
// MaxAttempts leaves that bound off; config validation keeps at least
// one of them set.
type PollPolicy struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

type StatusFetcher func(ctx context.Context) (*entity.PaymentStatus, error)

// PollPaymentStatus queries fetch once per interval until it reports
// "paid". Failed queries are logged and the loop carries on. It returns
// ctx's error when ctx is cancelled and ErrPollExhausted when the policy
// runs out, along with the last status seen.
func PollPaymentStatus(ctx context.Context, fetch StatusFetcher, policy PollPolicy) (*entity.PaymentStatus, error) {
	pollCtx := ctx
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	interval := policy.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *entity.PaymentStatus
	for attempt := 1; ; attempt++ {
		select {
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return last, err
			}
			return last, ErrPollExhausted
		case <-ticker.C:
		}

		status, err := fetch(pollCtx)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				log.Warnf("payment status query %d failed: %v", attempt, err)
			}
		case status.IsPaid():
			return status, nil
		default:
			last = status
		}

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return last, ErrPollExhausted
		}
	}
}

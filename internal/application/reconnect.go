package application

import (
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
)

// ReconnectPolicy decides whether a closed session is followed by a fresh
// one. attempt counts consecutive closures since the last successful
// handshake, starting at 1.
type ReconnectPolicy interface {
	NextDelay(attempt int, closed domain.Event) (time.Duration, bool)
}

// NeverReconnect surfaces the first closure as final.
type NeverReconnect struct{}

func (NeverReconnect) NextDelay(int, domain.Event) (time.Duration, bool) {
	return 0, false
}

// ExponentialBackoff doubles the delay after every failed attempt, capped at
// Max, and gives up after MaxAttempts consecutive closures. MaxAttempts <= 0
// retries forever.
type ExponentialBackoff struct {
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
}

func (b ExponentialBackoff) NextDelay(attempt int, _ domain.Event) (time.Duration, bool) {
	if attempt < 1 {
		attempt = 1
	}
	if b.MaxAttempts > 0 && attempt > b.MaxAttempts {
		return 0, false
	}

	delay := b.Initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if b.Max > 0 && delay >= b.Max {
			return b.Max, true
		}
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}

	return delay, true
}

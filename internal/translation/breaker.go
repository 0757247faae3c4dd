package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerTranslator stops calling a provider after repeated failures
type BreakerTranslator struct {
	next    Translator
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerTranslator wraps next with a circuit breaker that opens after
// maxFailures consecutive errors and stays open for cooldown
func NewBreakerTranslator(next Translator, maxFailures uint32, cooldown time.Duration) *BreakerTranslator {
	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	return &BreakerTranslator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate forwards to the wrapped provider unless the breaker is open
func (b *BreakerTranslator) Translate(ctx context.Context, phrase string) (string, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, phrase)
	})
	if err != nil {
		return "", err
	}

	translation, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected translation result %T", result)
	}
	return translation, nil
}

// Name returns the wrapped provider name
func (b *BreakerTranslator) Name() string {
	return b.next.Name()
}

// Open reports whether the breaker currently rejects calls
func (b *BreakerTranslator) Open() bool {
	return b.breaker.State() == gobreaker.StateOpen
}

package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

// BreakerSettings tunes the per-source circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings trips after 5 lookups with at least 80% failures.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Guarded short-circuits a source that keeps failing. "Nothing found" is not a failure.
type Guarded struct {
	inner ports.Source
	cb    *gobreaker.CircuitBreaker
}

var _ ports.Source = (*Guarded)(nil)

// Guard wraps src with a circuit breaker named after it.
func Guard(src ports.Source, st BreakerSettings, logger *slog.Logger) *Guarded {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        src.Name(),
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < st.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= st.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("source breaker state changed", "source", name, "from", from.String(), "to", to.String())
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResult) || errors.Is(err, errAbandoned)
		},
	})
	return &Guarded{inner: src, cb: cb}
}

// Name identifies the wrapped source.
func (g *Guarded) Name() string {
	return g.inner.Name()
}

// Fetch delegates to the wrapped source unless the breaker is open.
func (g *Guarded) Fetch(ctx context.Context, term string) (*domain.SourceResult, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		res, err := g.inner.Fetch(ctx, term)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errAbandoned, err)
		}
		return res, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Source: g.Name(), Op: "breaker", Err: err}
		}
		return nil, err
	}

	res, _ := out.(*domain.SourceResult)
	if res == nil {
		return nil, ErrNoResult
	}
	return res, nil
}

// State exposes the breaker state for diagnostics.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

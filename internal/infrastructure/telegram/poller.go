package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"LookupBot/internal/domain"
)

// Handler processes one inbound message.
type Handler func(ctx context.Context, msg domain.Message)

type updateSource interface {
	Updates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller long-polls getUpdates and runs each message in its own goroutine.
type Poller struct {
	source  updateSource
	handle  Handler
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewPoller wires a client with the message handler.
func NewPoller(client *Client, handle Handler, timeout time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:  client,
		handle:  handle,
		timeout: timeout,
		backoff: 3 * time.Second,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight handlers.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()

	var offset int64
	for ctx.Err() == nil {
		updates, err := p.source.Updates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.warn("get updates failed", "error", err, "retry_in", p.backoff)
			p.pause(ctx)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			msg, ok := u.ToMessage()
			if !ok {
				continue
			}
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				p.handle(ctx, msg)
			}()
		}
	}
	return nil
}

func (p *Poller) pause(ctx context.Context) {
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (p *Poller) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

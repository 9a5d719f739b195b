package sse

import (
	"log/slog"
	"sync"
	"time"
)

// KeepAliveWriter writes a keep-alive comment to the connection.
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// TickerKeepAlive pings at a fixed interval until stopped or a write fails.
type TickerKeepAlive struct {
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewTickerKeepAlive creates a stopped keep-alive; call Start to run it.
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs the ticker in a goroutine. The returned channel closes when
// the goroutine exits.
func (k *TickerKeepAlive) Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	exited := make(chan struct{})
	if k.interval <= 0 {
		close(exited)
		return exited
	}

	go func() {
		defer close(exited)
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			case <-k.done:
				return
			}
		}
	}()

	return exited
}

// Stop ends the keep-alive. Safe to call more than once.
func (k *TickerKeepAlive) Stop() {
	k.once.Do(func() { close(k.done) })
}

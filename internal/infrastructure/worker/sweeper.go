package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultInterval = 5 * time.Minute

// Sweepable removes stale state and reports how many entries went away.
type Sweepable interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper calls Sweep on a fixed interval until its context is cancelled.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	log      zerolog.Logger
	done     chan struct{}
}

// NewSweeper creates a Sweeper. If interval <= 0, defaultInterval is used.
func NewSweeper(target Sweepable, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		target:   target,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

// Done is closed once the loop has exited.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.target.Sweep(ctx)
			if err != nil {
				s.log.Error().Err(err).Int("removed", n).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				s.log.Info().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}

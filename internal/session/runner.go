// internal/session/runner.go

package session

import (
	"context"
	"time"

	apperrors "wspick/internal/error"
)

// Condition is checked after every applied event; Until returns once it
// holds.
type Condition func(s *Session, eff Effect) bool

// Runner pumps transport events into a session without a UI, for one-shot
// commands.
type Runner struct {
	s    *Session
	tick time.Duration

	// OnEffect, when set, sees every non-empty effect.
	OnEffect func(Effect)
}

func NewRunner(s *Session) *Runner {
	return &Runner{s: s, tick: 250 * time.Millisecond}
}

func (r *Runner) Session() *Session { return r.s }

// Until applies events until cond holds, ctx ends, or the session reports an
// error. A session that loses its transport before cond holds yields the
// error that caused it.
func (r *Runner) Until(ctx context.Context, cond Condition) error {
	if cond(r.s, Effect{}) {
		return nil
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		events := r.s.Events()
		if events == nil {
			return ErrNotConnected
		}

		select {
		case <-ctx.Done():
			return apperrors.New(apperrors.TimeoutError, "gave up waiting for server", ctx.Err())
		case now := <-ticker.C:
			if err := r.s.Expire(now); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return ErrNotConnected
			}
			eff, err := r.s.HandleEvent(ev)
			if err != nil {
				return err
			}
			if r.OnEffect != nil && eff != (Effect{}) {
				r.OnEffect(eff)
			}
			if cond(r.s, eff) {
				return nil
			}
		}
	}
}

// Close ends the server session and waits for the transport to go away.
func (r *Runner) Close(ctx context.Context) error {
	gone := func(s *Session, _ Effect) bool {
		return s.State() == Disconnected || s.Idle()
	}

	for r.s.State() != Disconnected {
		if err := r.s.Disconnect(); err != nil {
			return err
		}
		if err := r.Until(ctx, gone); err != nil {
			if r.s.State() == Disconnected {
				return nil
			}
			return err
		}
	}
	return nil
}

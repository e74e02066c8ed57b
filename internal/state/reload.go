package state

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Reload starts a background load of the session's repository and returns
// its generation. A running reload of the same session is cancelled; its
// result, if any arrives, is dropped. The load outlives ctx's cancellation
// but keeps its values.
func (sm *SessionManager) Reload(ctx context.Context, sessionID string) (uint64, error) {
	s, ok := sm.GetSession(sessionID)
	if !ok {
		return 0, ErrSessionNotFound
	}
	load := sm.loader()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	logger := sm.logger.With(zap.String("session", sessionID), zap.Uint64("generation", gen))
	logger.Debug("reload started")

	go func() {
		defer close(done)
		defer cancel()

		state, err := load(runCtx, s)
		if !s.publish(gen, state, err) {
			logger.Debug("reload superseded")
			return
		}
		if err != nil {
			if IsCancelled(err) {
				logger.Debug("reload cancelled", zap.Error(err))
			} else {
				logger.Error("reload failed", zap.Error(err))
			}
			return
		}
		logger.Info("reload finished", zap.Int("commits", len(state.Layout.Rows)))
	}()

	return gen, nil
}

// publish swaps in a finished result if gen is still current.
func (s *Session) publish(gen uint64, state *GraphState, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.loading = false
	s.cancel = nil
	if err != nil {
		s.err = err
		return true
	}
	s.state = state
	s.err = nil
	return true
}

// Wait blocks until the session's latest reload has been published.
func (sm *SessionManager) Wait(ctx context.Context, sessionID string) error {
	s, ok := sm.GetSession(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	for {
		s.mu.RLock()
		loading, done := s.loading, s.done
		s.mu.RUnlock()

		if !loading || done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// IsCancelled reports whether err stems from a superseded or aborted load.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

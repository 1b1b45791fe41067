package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

// DefaultSweepInterval is how often the sweeper scans for expired polls.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically finalizes expired polls: it renders their final
// tally through the notifier (best-effort) and then purges each poll
// together with its vote records.
//
// A single goroutine owns the loop, so runs never overlap; a tick that
// fires while a run is still in progress is dropped, not queued. Each
// run is a full fresh scan against absolute time, so runs missed while
// the process was down self-heal on the next one.
type Sweeper struct {
	repo     ports.PollRepository
	notifier ports.Notifier
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSweeper(repo ports.PollRepository, notifier ports.Notifier, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the sweep loop in a background goroutine. Callers must
// not start the sweeper before external connectivity is confirmed,
// since the first run may issue renders immediately. Start is
// idempotent; calls after the first are no-ops.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// First pass runs immediately so polls that came due while the
		// process was down are finalized without waiting an interval.
		s.sweep(runCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.sweep(runCtx)
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight run to finish, so
// shutdown never leaves a poll half-handled within a run. Safe to call
// multiple times or before Start.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// sweep performs one full pass: scan, render all, then purge all.
// Rendering and purging are deliberately two phases so that a render
// crash for one poll never prevents purging the others found in the
// same scan.
func (s *Sweeper) sweep(ctx context.Context) {
	now := s.now()

	due, err := s.repo.FindDueBefore(ctx, now)
	if err != nil {
		s.logger.Error("failed to scan for expired polls", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	for _, poll := range due {
		if err := s.notifier.Render(ctx, poll.ChannelID, poll.ID, poll.Tally, true); err != nil {
			// Not retried: losing the final display is accepted,
			// losing recorded votes is not.
			s.logger.Warn("failed to render final poll state",
				"poll_id", poll.ID,
				"channel_id", poll.ChannelID,
				"error", err,
			)
		}
	}

	for _, poll := range due {
		if err := s.repo.PurgePoll(ctx, poll.ID); err != nil {
			s.logger.Error("failed to purge expired poll", "poll_id", poll.ID, "error", err)
			continue
		}
		s.logger.Info("purged expired poll", "poll_id", poll.ID, "votes", poll.Tally.Total())
	}
}

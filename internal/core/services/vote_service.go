package services

import (
	"context"
	"log/slog"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

type voteService struct {
	repo     ports.PollRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewVoteService(repo ports.PollRepository, notifier ports.Notifier, logger *slog.Logger) ports.VoteService {
	return &voteService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Vote delegates straight to the repository's atomic
// record-and-increment; the storage layer's uniqueness constraint is
// the dedup authority, so there is no prior HasVoted read here. On
// success the updated tally is re-rendered best-effort.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	poll, err := s.repo.RecordVoteAndIncrement(ctx, input.PollID, input.ParticipantID, input.Option)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Render(ctx, poll.ChannelID, poll.ID, poll.Tally, false); err != nil {
		// The vote is durable; a failed render must not undo it.
		s.logger.Warn("failed to re-render poll after vote",
			"poll_id", poll.ID,
			"channel_id", poll.ChannelID,
			"error", err,
		)
	}

	return poll, nil
}

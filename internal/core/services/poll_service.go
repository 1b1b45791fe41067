package services

import (
	"context"
	"time"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
	"github.com/ijsbol/anonymous-discord-polls/internal/duration"
)

type pollService struct {
	repo ports.PollRepository
	now  func() time.Time
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	tally, err := domain.NewTally(input.Options)
	if err != nil {
		return nil, err
	}

	// A duration that parses to zero is accepted and means the poll
	// expires immediately; the next sweep finalizes it.
	seconds := duration.Parse(input.Duration)

	poll := &domain.Poll{
		ID:        input.MessageID,
		ChannelID: input.ChannelID,
		ExpiresAt: s.now().Add(time.Duration(seconds) * time.Second).Truncate(time.Second),
		Tally:     tally,
	}

	if err := s.repo.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	if id == "" {
		return nil, domain.ErrPollNotFound
	}
	return s.repo.GetByID(ctx, id)
}

package ports

import (
	"context"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
)

type VoteInput struct {
	PollID        string
	ParticipantID string
	Option        string
}

type VoteService interface {
	// Vote records the participant's choice exactly once. A nil error
	// means the vote was recorded; rejections surface as
	// domain.ErrAlreadyVoted, domain.ErrUnknownOption or
	// domain.ErrPollNotFound.
	Vote(ctx context.Context, input VoteInput) (*domain.Poll, error)
}

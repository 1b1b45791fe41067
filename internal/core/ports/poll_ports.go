package ports

import (
	"context"
	"time"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
)

// PollRepository is the persistence gateway: the only component allowed
// to touch durable poll state. A poll and its vote ledger form one
// aggregate; every multi-statement operation below is atomic.
type PollRepository interface {
	// CreatePoll inserts a new poll. Returns domain.ErrDuplicatePoll if
	// a poll with the same id already exists.
	CreatePoll(ctx context.Context, poll *domain.Poll) error

	// GetByID returns the poll with the given id, or
	// domain.ErrPollNotFound.
	GetByID(ctx context.Context, id string) (*domain.Poll, error)

	// FindDueBefore returns every poll whose deadline is at or before t.
	FindDueBefore(ctx context.Context, t time.Time) ([]*domain.Poll, error)

	// HasVoted reports whether the participant already voted on the poll.
	HasVoted(ctx context.Context, pollID, participantID string) (bool, error)

	// RecordVoteAndIncrement records the participant's vote and
	// increments the chosen option's count in a single transaction.
	// Dedup is enforced by the storage layer's uniqueness constraint,
	// not by a prior read. Returns the updated poll on success, or
	// domain.ErrAlreadyVoted, domain.ErrUnknownOption or
	// domain.ErrPollNotFound; any failure rolls the whole transaction
	// back.
	RecordVoteAndIncrement(ctx context.Context, pollID, participantID, option string) (*domain.Poll, error)

	// PurgePoll deletes the poll and all of its vote records atomically.
	// Purging a poll that does not exist is a no-op.
	PurgePoll(ctx context.Context, pollID string) error
}

// CreatePollInput carries a poll creation command. MessageID and
// ChannelID are assigned by the platform that posted the poll message.
type CreatePollInput struct {
	MessageID string
	ChannelID string
	Topic     string
	Duration  string
	Options   []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

func TestCreatePoll(t *testing.T) {
	repo := newFakeRepo()
	svc := NewPollService(repo).(*pollService)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		MessageID: "msg-1",
		ChannelID: "chan-1",
		Topic:     "Lunch?",
		Duration:  "1h30m",
		Options:   []string{"Pizza", "Sushi", "Salad"},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-1", poll.ID)
	assert.Equal(t, "chan-1", poll.ChannelID)
	assert.Equal(t, base.Add(90*time.Minute), poll.ExpiresAt)
	assert.Equal(t, 3, poll.Tally.Len())
	assert.Equal(t, int64(0), poll.Tally.Total())

	fetched, err := svc.GetPoll(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, poll.ID, fetched.ID)
}

func TestCreatePollInvalidOptions(t *testing.T) {
	repo := newFakeRepo()
	svc := NewPollService(repo)

	tests := []struct {
		name    string
		options []string
	}{
		{"one option", []string{"Only"}},
		{"eleven options", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
		{"duplicate options", []string{"Same", "Same"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), ports.CreatePollInput{
				MessageID: "msg-x",
				ChannelID: "chan-x",
				Duration:  "1h",
				Options:   tt.options,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidOptions)
		})
	}
}

func TestCreatePollZeroDurationExpiresImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := NewPollService(repo).(*pollService)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		MessageID: "msg-2",
		ChannelID: "chan-1",
		Duration:  "not a duration",
		Options:   []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.True(t, poll.Expired(base), "a zero duration means the poll is already due")
}

func TestCreatePollDuplicateID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewPollService(repo)

	input := ports.CreatePollInput{
		MessageID: "msg-3",
		ChannelID: "chan-1",
		Duration:  "1h",
		Options:   []string{"A", "B"},
	}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDuplicatePoll)
}

func TestGetPollNotFound(t *testing.T) {
	svc := NewPollService(newFakeRepo())

	_, err := svc.GetPoll(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = svc.GetPoll(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

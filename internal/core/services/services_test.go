package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
)

// fakeRepo is an in-memory PollRepository used by the service tests.
// Dedup and atomicity are emulated under one mutex.
type fakeRepo struct {
	mu     sync.Mutex
	polls  map[string]*domain.Poll
	voters map[string]map[string]struct{} // pollID -> participantID set

	findErr  error
	purgeErr error
	purged   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		polls:  make(map[string]*domain.Poll),
		voters: make(map[string]map[string]struct{}),
	}
}

func (r *fakeRepo) CreatePoll(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[poll.ID]; ok {
		return domain.ErrDuplicatePoll
	}
	cp := *poll
	r.polls[poll.ID] = &cp
	r.voters[poll.ID] = make(map[string]struct{})
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	cp := *poll
	return &cp, nil
}

func (r *fakeRepo) FindDueBefore(_ context.Context, t time.Time) ([]*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var due []*domain.Poll
	for _, poll := range r.polls {
		if poll.Expired(t) {
			cp := *poll
			due = append(due, &cp)
		}
	}
	return due, nil
}

func (r *fakeRepo) HasVoted(_ context.Context, pollID, participantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.voters[pollID]
	if !ok {
		return false, nil
	}
	_, voted := set[participantID]
	return voted, nil
}

func (r *fakeRepo) RecordVoteAndIncrement(_ context.Context, pollID, participantID, option string) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	if _, voted := r.voters[pollID][participantID]; voted {
		return nil, domain.ErrAlreadyVoted
	}
	if err := poll.Tally.Increment(option); err != nil {
		return nil, err
	}
	r.voters[pollID][participantID] = struct{}{}
	cp := *poll
	return &cp, nil
}

func (r *fakeRepo) PurgePoll(_ context.Context, pollID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.purgeErr != nil {
		return r.purgeErr
	}
	delete(r.polls, pollID)
	delete(r.voters, pollID)
	r.purged = append(r.purged, pollID)
	return nil
}

// fakeNotifier records render calls and can be told to fail.
type fakeNotifier struct {
	mu      sync.Mutex
	renders []renderCall
	err     error
}

type renderCall struct {
	ChannelID string
	PollID    string
	Total     int64
	Final     bool
}

var errDisplayGone = errors.New("message deleted")

func (n *fakeNotifier) Render(_ context.Context, channelID, pollID string, tally domain.Tally, final bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.renders = append(n.renders, renderCall{
		ChannelID: channelID,
		PollID:    pollID,
		Total:     tally.Total(),
		Final:     final,
	})
	return n.err
}

func (n *fakeNotifier) calls() []renderCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]renderCall, len(n.renders))
	copy(out, n.renders)
	return out
}

package domain

import "errors"

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrDuplicatePoll  = errors.New("a poll with this id already exists")
	ErrInvalidOptions = errors.New("polls require between 2 and 10 unique options")
	ErrUnknownOption  = errors.New("invalid option for this poll")
	ErrAlreadyVoted   = errors.New("participant has already voted on this poll")
)

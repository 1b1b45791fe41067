package domain

import "time"

// Poll is an anonymous, multi-option poll. The ID is the message id
// assigned by the platform when the poll message was posted; the service
// adopts it as the primary key and never mints its own. Vote
// participation is tracked as bare (participant, poll) pairs in the
// persistence layer; the chosen option is never stored against the
// participant, which is what keeps the poll anonymous.
type Poll struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Tally     Tally     `json:"tally"`
}

// Expired reports whether the poll's deadline has passed at t.
func (p *Poll) Expired(t time.Time) bool {
	return !p.ExpiresAt.After(t)
}

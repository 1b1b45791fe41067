package ports

import (
	"context"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
)

// Notifier renders a poll's tally on the external display surface.
// Calls are best-effort: the core logs failures and moves on, and no
// render outcome ever influences persisted state.
type Notifier interface {
	Render(ctx context.Context, channelID, pollID string, tally domain.Tally, final bool) error
}

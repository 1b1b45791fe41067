// Package discord renders poll tallies by editing the buttons of the
// Discord message that hosts the poll.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

const (
	defaultAPIBase = "https://discord.com/api/v10"
	requestTimeout = 10 * time.Second

	componentTypeActionRow = 1
	componentTypeButton    = 2
	buttonStyleSecondary   = 2

	// Discord caps action rows at five buttons and messages at five rows,
	// which comfortably fits the ten-option maximum.
	buttonsPerRow = 5
)

type Notifier struct {
	apiBase    string
	token      string
	httpClient *http.Client
}

// New creates a Discord notifier. token is the bot token; apiBase
// overrides the Discord REST base URL (used for proxy deployments) and
// may be empty.
func New(token, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		apiBase: apiBase,
		token:   token,
		// No global timeout; each render carries its own deadline.
		httpClient: &http.Client{},
	}
}

var _ ports.Notifier = (*Notifier)(nil)

type component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Disabled   bool        `json:"disabled,omitempty"`
	Components []component `json:"components,omitempty"`
}

type messageEdit struct {
	Components []component `json:"components"`
}

// Render edits the poll message so each option button shows its current
// count. Final renders disable the buttons. Errors (message deleted,
// permissions revoked, network) are returned for the caller to log;
// they carry no retry semantics.
func (n *Notifier) Render(ctx context.Context, channelID, pollID string, tally domain.Tally, final bool) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	payload, err := json.Marshal(messageEdit{Components: buttonRows(tally, final)})
	if err != nil {
		return fmt.Errorf("failed to encode message edit: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages/%s", n.apiBase, channelID, pollID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to edit poll message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("poll message edit rejected: status %d", resp.StatusCode)
	}
	return nil
}

func buttonRows(tally domain.Tally, final bool) []component {
	options := tally.Options()

	var rows []component
	for start := 0; start < len(options); start += buttonsPerRow {
		end := start + buttonsPerRow
		if end > len(options) {
			end = len(options)
		}

		row := component{Type: componentTypeActionRow}
		for _, opt := range options[start:end] {
			label := opt.Label
			if final {
				label = fmt.Sprintf("%s: %d", opt.Label, opt.Count)
			}
			row.Components = append(row.Components, component{
				Type:     componentTypeButton,
				Style:    buttonStyleSecondary,
				Label:    label,
				CustomID: opt.Label,
				Disabled: final,
			})
		}
		rows = append(rows, row)
	}

	return rows
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	ParticipantID string `json:"participant_id"`
	Option        string `json:"option"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	if pollID == "" {
		http.Error(w, "missing poll id", http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ParticipantID == "" {
		http.Error(w, "participant_id is required", http.StatusBadRequest)
		return
	}

	input := ports.VoteInput{
		PollID:        pollID,
		ParticipantID: req.ParticipantID,
		Option:        req.Option,
	}

	if _, err := h.service.Vote(r.Context(), input); err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, domain.ErrUnknownOption) {
			// Buttons only carry labels the poll was created with, so
			// this indicates a wiring problem in the front-end.
			slog.Warn("vote for unknown option", "poll_id", pollID, "option", req.Option)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, "poll no longer active", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

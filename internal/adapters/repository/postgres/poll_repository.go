package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
)

// Postgres error codes surfaced by lib/pq.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	tally, err := json.Marshal(poll.Tally)
	if err != nil {
		return fmt.Errorf("failed to encode tally: %w", err)
	}

	query := `
		INSERT INTO polls (id, channel_id, expires_at, tally)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, query, poll.ID, poll.ChannelID, poll.ExpiresAt, tally)
	if err != nil {
		if isPQError(err, uniqueViolation) {
			return domain.ErrDuplicatePoll
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	query := `
		SELECT id, channel_id, expires_at, tally
		FROM polls
		WHERE id = $1
	`
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}

func (r *pollRepository) FindDueBefore(ctx context.Context, t time.Time) ([]*domain.Poll, error) {
	query := `
		SELECT id, channel_id, expires_at, tally
		FROM polls
		WHERE expires_at <= $1
	`
	rows, err := r.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("failed to query due polls: %w", err)
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) HasVoted(ctx context.Context, pollID, participantID string) (bool, error) {
	query := `SELECT 1 FROM voters WHERE poll_id = $1 AND participant_id = $2`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, participantID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

// RecordVoteAndIncrement performs the exactly-once vote transaction.
// The voter insert hits the table's composite primary key, so two
// concurrent votes by the same participant can never both commit; the
// subsequent tally update runs under the same transaction with the poll
// row locked, so concurrent increments for different participants are
// serialized and never lost. Any failure rolls everything back.
func (r *pollRepository) RecordVoteAndIncrement(ctx context.Context, pollID, participantID, option string) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertVoter := `
		INSERT INTO voters (participant_id, poll_id)
		VALUES ($1, $2)
	`
	_, err = tx.ExecContext(ctx, insertVoter, participantID, pollID)
	if err != nil {
		if isPQError(err, uniqueViolation) {
			return nil, domain.ErrAlreadyVoted
		}
		// The foreign key fires when the poll raced with an expiration
		// purge between the click and the insert.
		if isPQError(err, foreignKeyViolation) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to insert vote record: %w", err)
	}

	selectPoll := `
		SELECT id, channel_id, expires_at, tally
		FROM polls
		WHERE id = $1
		FOR UPDATE
	`
	poll, err := scanPoll(tx.QueryRowContext(ctx, selectPoll, pollID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to load poll for update: %w", err)
	}

	if err := poll.Tally.Increment(option); err != nil {
		return nil, err
	}

	tally, err := json.Marshal(poll.Tally)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tally: %w", err)
	}

	updateTally := `UPDATE polls SET tally = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateTally, tally, pollID); err != nil {
		return nil, fmt.Errorf("failed to update tally: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return poll, nil
}

// PurgePoll deletes the poll and, through ON DELETE CASCADE, every vote
// record that belongs to it in the same statement. Purging a poll that
// no longer exists is a no-op.
func (r *pollRepository) PurgePoll(ctx context.Context, pollID string) error {
	query := `DELETE FROM polls WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, pollID)
	if err != nil {
		return fmt.Errorf("failed to purge poll: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var (
		poll  domain.Poll
		tally []byte
	)
	if err := row.Scan(&poll.ID, &poll.ChannelID, &poll.ExpiresAt, &tally); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tally, &poll.Tally); err != nil {
		return nil, fmt.Errorf("failed to decode tally: %w", err)
	}
	return &poll, nil
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

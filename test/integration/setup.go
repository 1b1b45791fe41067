package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/ijsbol/anonymous-discord-polls/internal/adapters/handler/http"
	repo "github.com/ijsbol/anonymous-discord-polls/internal/adapters/repository/postgres"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/domain"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/ports"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/services"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// recordingNotifier stands in for the Discord display surface. It can
// be told to fail so tests can prove renders never affect persistence.
type recordingNotifier struct {
	mu      sync.Mutex
	renders []recordedRender
	err     error
}

type recordedRender struct {
	ChannelID string
	PollID    string
	Final     bool
	Total     int64
}

func (n *recordingNotifier) Render(_ context.Context, channelID, pollID string, tally domain.Tally, final bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.renders = append(n.renders, recordedRender{
		ChannelID: channelID,
		PollID:    pollID,
		Final:     final,
		Total:     tally.Total(),
	})
	return n.err
}

func (n *recordingNotifier) finalRenders() []recordedRender {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedRender
	for _, r := range n.renders {
		if r.Final {
			out = append(out, r)
		}
	}
	return out
}

type TestApp struct {
	DB          *sql.DB
	Repo        ports.PollRepository
	PollSvc     ports.PollService
	VoteSvc     ports.VoteService
	Notifier    *recordingNotifier
	Server      *httptest.Server
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &recordingNotifier{}

	pollRepo := repo.NewPollRepository(db)
	pollSvc := services.NewPollService(pollRepo)
	voteSvc := services.NewVoteService(pollRepo, notifier, logger)

	router := handler.NewHandler(handler.NewPollHandler(pollSvc), handler.NewVoteHandler(voteSvc))
	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Repo:        pollRepo,
		PollSvc:     pollSvc,
		VoteSvc:     voteSvc,
		Notifier:    notifier,
		Server:      server,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) newSweeper(t *testing.T, interval time.Duration) *services.Sweeper {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewSweeper(app.Repo, app.Notifier, interval, logger)
}

func (app *TestApp) voterCount(t *testing.T, pollID string) int {
	t.Helper()
	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM voters WHERE poll_id = $1", pollID).Scan(&count)
	require.NoError(t, err)
	return count
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

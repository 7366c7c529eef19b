package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dom/notes-api/internal/api"
	"github.com/dom/notes-api/internal/config"
	"github.com/dom/notes-api/internal/repository"
	repoPostgres "github.com/dom/notes-api/internal/repository/postgres"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_notes"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"notes",
		"revoked_tokens",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                      "0",
		Environment:               "test",
		LogLevel:                  "error",
		StoreTimeout:              5 * time.Second,
		SecretKey:                 "test-secret-key-for-testing-only",
		Algorithm:                 "HS256",
		AccessTokenTTL:            30 * time.Minute,
		BcryptCost:                bcrypt.MinCost, // fast hashing for tests
		HashConcurrency:           4,
		CORSAllowedOrigins:        []string{"http://localhost:3000"},
		RevocationCleanupInterval: time.Hour,
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// NewTestServices wires services over repos with the test config.
func NewTestServices(t *testing.T, repos *repository.Repositories, publisher service.NoteEventPublisher) *service.Services {
	t.Helper()

	services, err := service.NewServices(repos, TestConfig(), publisher)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}
	return services
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
	Registry *prometheus.Registry
}

// NewTestServer creates a complete test server backed by a postgres container
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB, repoPostgres.DefaultTimeout)

	ts := newTestServer(t, repos)
	ts.DB = testDB
	return ts
}

// NewInMemoryTestServer creates a complete test server over the in-memory stores
func NewInMemoryTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, NewMemoryRepositories())
}

func newTestServer(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	log := DiscardLogger()

	hub := websocket.NewHub(log)
	go hub.Run()

	services, err := service.NewServices(repos, cfg, hub)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	registry := prometheus.NewRegistry()
	router := api.NewRouter(services, hub, cfg, log, registry)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
		Registry: registry,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return ts.Server.URL + path
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/ws?token=%s", wsURL, url.QueryEscape(token))
}

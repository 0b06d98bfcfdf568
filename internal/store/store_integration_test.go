package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/gocatalog/db"
	cerrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/pkg/bootstrap"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the PostgreSQL ProductStore implementation.
type PgStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       ProductStore                //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "catalog_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Apply the embedded schema migrations
	require.NoError(s.T(), db.RunMigrations(connStr), "Failed to apply migrations")
	s.logger.Info("Migrations applied for integration tests")

	// 4. Create the connection pool the way the application does, so the
	// decimal codec is registered on every connection.
	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 30*time.Second)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *PgStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestPgStoreIntegration runs the PgStore integration tests.
func TestPgStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(PgStoreSuite))
}

// putTestProduct is a helper to insert a product with the given name.
func (s *PgStoreSuite) putTestProduct(name string) Product {
	s.T().Helper()
	p := Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString("59.95"),
		Available: true,
		Category:  CategoryCloths,
	}
	require.NoError(s.T(), s.store.Put(s.ctx, p), "putTestProduct helper failed")
	return p
}

func (s *PgStoreSuite) TestPutGet() {
	s.SetupTest()
	// given
	product := Product{
		ID:          uuid.New(),
		Name:        "Fedora",
		Description: "A red hat",
		Price:       decimal.RequireFromString("59.95"),
		Available:   true,
		Category:    CategoryCloths,
	}
	// when
	require.NoError(s.T(), s.store.Put(s.ctx, product))
	found, err := s.store.Get(s.ctx, product.ID)
	// then
	require.NoError(s.T(), err)
	assert.Equal(s.T(), product.ID, found.ID)
	assert.Equal(s.T(), product.Name, found.Name)
	assert.Equal(s.T(), product.Description, found.Description)
	assert.True(s.T(), product.Price.Equal(found.Price), "price must round-trip exactly, got %s", found.Price)
	assert.Equal(s.T(), product.Available, found.Available)
	assert.Equal(s.T(), product.Category, found.Category)
}

func (s *PgStoreSuite) TestGetNotFound() {
	s.SetupTest()

	found, err := s.store.Get(s.ctx, uuid.New())

	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
	assert.Nil(s.T(), found)
}

func (s *PgStoreSuite) TestPutOverwrites() {
	s.SetupTest()
	// given
	product := s.putTestProduct("Fedora")
	// when
	product.Name = "Bowler"
	product.Price = decimal.RequireFromString("45.00")
	product.Available = false
	require.NoError(s.T(), s.store.Put(s.ctx, product))
	// then
	found, err := s.store.Get(s.ctx, product.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Bowler", found.Name)
	assert.True(s.T(), decimal.RequireFromString("45.00").Equal(found.Price))
	assert.False(s.T(), found.Available)

	all, err := s.store.All(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)
}

func (s *PgStoreSuite) TestDelete() {
	s.SetupTest()
	// given
	product := s.putTestProduct("Fedora")
	// when
	require.NoError(s.T(), s.store.Delete(s.ctx, product.ID))
	// then
	_, err := s.store.Get(s.ctx, product.ID)
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
	// the second delete of the same ID must report not found
	err = s.store.Delete(s.ctx, product.ID)
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestAllInsertionOrder() {
	s.SetupTest()
	// given
	names := []string{"Fedora", "Toaster", "Gardening Book", "Hammer", "Sofa"}
	for _, name := range names {
		s.putTestProduct(name)
	}
	// when
	all, err := s.store.All(s.ctx)
	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), all, len(names))
	for i, p := range all {
		assert.Equal(s.T(), names[i], p.Name, fmt.Sprintf("position %d should keep insertion order", i))
	}
}

func (s *PgStoreSuite) TestOverwriteKeepsPosition() {
	s.SetupTest()
	// given
	first := s.putTestProduct("Fedora")
	s.putTestProduct("Toaster")
	s.putTestProduct("Hammer")
	// when: overwriting the first record must not move it to the back
	first.Name = "Bowler"
	require.NoError(s.T(), s.store.Put(s.ctx, first))
	// then
	all, err := s.store.All(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "Bowler", all[0].Name)
	assert.Equal(s.T(), "Toaster", all[1].Name)
	assert.Equal(s.T(), "Hammer", all[2].Name)
}

func (s *PgStoreSuite) TestAllEmpty() {
	s.SetupTest()

	all, err := s.store.All(s.ctx)

	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)
}

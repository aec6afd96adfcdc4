package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setup(t *testing.T, c context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *Service) {
	t.Helper()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "migrations", "000001_create_users_table.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return pool, pgContainer, NewService(pool, "test-secret-key")
}

func teardown(t *testing.T, pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer) {
	t.Helper()
	pool.Close()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, pgContainer, service := setup(t, c)
	defer teardown(t, pool, pgContainer)

	assert.NoError(t, service.SignUp(c, "asha@example.com", "s3cretpass", "Asha Rao"))

	_, ok := service.CurrentUser(c)
	assert.False(t, ok)

	assert.NoError(t, service.SignIn(c, "asha@example.com", "s3cretpass"))

	who, ok := service.CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, "asha@example.com", who.Email)
	assert.Equal(t, "Asha Rao", who.DisplayName)

	service.SignOut()
	_, ok = service.CurrentUser(c)
	assert.False(t, ok)
}

func TestSignInFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, pgContainer, service := setup(t, c)
	defer teardown(t, pool, pgContainer)

	assert.NoError(t, service.SignUp(c, "asha@example.com", "s3cretpass", "Asha Rao"))

	t.Run("given unknown email should return ErrUserNotFound", func(t *testing.T) {
		err := service.SignIn(c, "nobody@example.com", "s3cretpass")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("given wrong password should return ErrPasswordMismatch", func(t *testing.T) {
		err := service.SignIn(c, "asha@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("given duplicate email should reject sign up", func(t *testing.T) {
		err := service.SignUp(c, "asha@example.com", "anotherpass", "Asha Again")
		assert.Error(t, err)
	})
}

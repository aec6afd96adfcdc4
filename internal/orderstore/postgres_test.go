package orderstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type (
	setupFunc    func(context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *Postgres)
	teardownFunc func(*pgxpool.Pool, *postgres.PostgresContainer)
)

func setup(t *testing.T) setupFunc {
	return func(c context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *Postgres) {
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
				filepath.Join("..", "..", "migrations", "000002_create_profiles_table.up.sql"),
				filepath.Join("..", "..", "migrations", "000003_create_orders_table.up.sql"),
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

		return pool, pgContainer, NewPostgres(pool)
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer) {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}

func seedUser(t *testing.T, c context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	userId := uuid.New()
	_, err := pool.Exec(
		c,
		`insert into users (id, email, password, display_name) values ($1, $2, $3, $4)`,
		userId,
		"asha@example.com",
		"hashed",
		"Asha Rao",
	)
	if err != nil {
		t.Fatalf("failed seeding user with error: %s", err)
	}
	return userId
}

func TestUpsertProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, pgContainer, store := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	userId := seedUser(t, c, pool)

	profile := ProfileRecord{
		UserID:   userId,
		Name:     "Asha Rao",
		Phone:    "9876543210",
		Email:    "asha@example.com",
		Address:  "12 MG Road",
		Landmark: "Opposite metro station",
	}
	assert.NoError(t, store.UpsertProfile(c, profile))

	// second upsert with changed address must replace, not duplicate
	profile.Address = "48 Brigade Road"
	assert.NoError(t, store.UpsertProfile(c, profile))

	var (
		count   int
		address string
	)
	row := pool.QueryRow(
		c,
		`select count(*), max(address) from profiles where user_id = $1`,
		userId,
	)
	assert.NoError(t, row.Scan(&count, &address))
	assert.Equal(t, 1, count)
	assert.Equal(t, "48 Brigade Road", address)
}

func TestInsertOrderWithLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, pgContainer, store := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	userId := seedUser(t, c, pool)

	order := OrderRecord{
		ID:             uuid.New(),
		OrderNumber:    "EC123456",
		UserID:         userId,
		Name:           "Asha Rao",
		Phone:          "9876543210",
		Email:          "asha@example.com",
		Address:        "12 MG Road",
		Landmark:       "Opposite metro station",
		DeliveryDate:   "2026-09-02",
		TimeSlot:       "morning",
		PaymentMethod:  "cod",
		Subtotal:       decimal.NewFromInt(547),
		DeliveryFee:    decimal.Zero,
		Total:          decimal.NewFromInt(547),
		LoyaltyCredits: 54,
	}
	handle, err := store.InsertOrder(c, order)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, handle.ID)

	lines := []LineRecord{
		{
			ID:          uuid.New(),
			OrderID:     handle.ID,
			ProductID:   "alphonso-mango",
			ProductName: "Alphonso Mango",
			VariantID:   "mango-500g",
			VariantSize: "small",
			UnitPrice:   decimal.NewFromInt(249),
			Quantity:    2,
		},
		{
			ID:          uuid.New(),
			OrderID:     handle.ID,
			ProductID:   "baby-spinach",
			ProductName: "Baby Spinach",
			VariantID:   "spinach-100g",
			VariantSize: "small",
			UnitPrice:   decimal.NewFromInt(49),
			Quantity:    1,
		},
	}
	assert.NoError(t, store.InsertOrderLines(c, lines))

	found, foundLines, err := store.FindOrderByNumber(c, "EC123456")
	assert.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, "2026-09-02", found.DeliveryDate)
	assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(547)))
	assert.True(t, found.DeliveryFee.Equal(decimal.Zero))
	assert.Equal(t, int64(54), found.LoyaltyCredits)
	assert.Len(t, foundLines, 2)
}

func TestInsertOrderLinesRollsBackOnFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, pgContainer, store := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	userId := seedUser(t, c, pool)

	order := OrderRecord{
		ID:            uuid.New(),
		OrderNumber:   "EC654321",
		UserID:        userId,
		Name:          "Asha Rao",
		Phone:         "9876543210",
		Email:         "asha@example.com",
		Address:       "12 MG Road",
		DeliveryDate:  "2026-09-02",
		TimeSlot:      "evening",
		PaymentMethod: "upi",
		Subtotal:      decimal.NewFromInt(49),
		DeliveryFee:   decimal.NewFromInt(40),
		Total:         decimal.NewFromInt(89),
	}
	_, err := store.InsertOrder(c, order)
	assert.NoError(t, err)

	// second line violates the positive quantity check, the whole
	// batch must be rolled back
	lines := []LineRecord{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   "baby-spinach",
			ProductName: "Baby Spinach",
			VariantID:   "spinach-100g",
			VariantSize: "small",
			UnitPrice:   decimal.NewFromInt(49),
			Quantity:    1,
		},
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   "baby-spinach",
			ProductName: "Baby Spinach",
			VariantID:   "spinach-100g",
			VariantSize: "small",
			UnitPrice:   decimal.NewFromInt(49),
			Quantity:    0,
		},
	}
	assert.Error(t, store.InsertOrderLines(c, lines))

	var count int
	row := pool.QueryRow(c, `select count(*) from order_lines where order_id = $1`, order.ID)
	assert.NoError(t, row.Scan(&count))
	assert.Equal(t, 0, count)
}

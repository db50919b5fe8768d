//go:build integration

package postgres

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/migrations"
)

func newPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("codex_recipes_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		tcpostgres.WithSQLDriver("pgx"),
		testcontainers.WithLogger(logger),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to run postgres container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pgContainer.Terminate(ctx)
	})

	connectionString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	migrationSQL, err := migrations.FS.ReadFile("001_init.up.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %s", err)
	}
	if _, err := pool.Exec(ctx, string(migrationSQL)); err != nil {
		t.Fatalf("failed to apply migration: %s", err)
	}
	return pool
}

func TestStoreIntegration(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newPool(t, ctx))

	schema, err := domain.NewCatalog()
	require.NoError(t, err)
	users, _ := schema.Entity(domain.Users)
	recipes, _ := schema.Entity(domain.Recipes)
	ingredients, _ := schema.Entity(domain.Ingredients)
	messages, _ := schema.Entity(domain.Messages)
	favourites, _ := schema.Join(domain.Favourites)

	var ann, soup domain.Record

	t.Run("create and get recipe", func(t *testing.T) {
		ann, err = store.Create(ctx, users, domain.Record{"email": "a@b.c", "password": "x", "name": "Ann"})
		require.NoError(t, err)

		soup, err = store.Create(ctx, recipes, domain.Record{"title": "Soup", "ingredients": "water", "userId": ann.ID()})
		require.NoError(t, err)

		got, err := store.FindByID(ctx, recipes, soup.ID())
		require.NoError(t, err)
		assert.Equal(t, soup, got)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.Create(ctx, users, domain.Record{"email": "a@b.c", "password": "y", "name": "Bob"})
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)

		n := 0
		for _, err := range store.FindAll(ctx, users, domain.Filter{"email": "a@b.c"}) {
			require.NoError(t, err)
			n++
		}
		assert.Equal(t, 1, n)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := store.Create(ctx, messages, domain.Record{"text": "hi", "userId": "ghost"})
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	})

	t.Run("update and patch", func(t *testing.T) {
		updated, err := store.Update(ctx, recipes, soup.ID(), domain.Record{"imgUrl": "http://img"})
		require.NoError(t, err)
		assert.Equal(t, "http://img", updated["imgUrl"])
		assert.Equal(t, "Soup", updated["title"])

		_, err = store.Update(ctx, recipes, "missing", domain.Record{"title": "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("favourite pairs are unique", func(t *testing.T) {
		require.NoError(t, store.AddPair(ctx, favourites, ann.ID(), soup.ID()))
		require.NoError(t, store.AddPair(ctx, favourites, ann.ID(), soup.ID()))

		ids, err := store.Pairs(ctx, favourites, domain.LeftSide, ann.ID())
		require.NoError(t, err)
		assert.Equal(t, []string{soup.ID()}, ids)

		require.NoError(t, store.RemovePair(ctx, favourites, ann.ID(), soup.ID()))
		require.NoError(t, store.RemovePair(ctx, favourites, ann.ID(), soup.ID()))

		has, err := store.HasPair(ctx, favourites, ann.ID(), soup.ID())
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("remove cascades", func(t *testing.T) {
		_, err := store.Create(ctx, ingredients, domain.Record{"name": "salt", "recipeId": soup.ID()})
		require.NoError(t, err)
		_, err = store.Create(ctx, messages, domain.Record{"text": "hi", "userId": ann.ID()})
		require.NoError(t, err)

		_, err = store.Remove(ctx, users, ann.ID())
		require.NoError(t, err)

		for range store.FindAll(ctx, messages, nil) {
			t.Fatal("messages of a removed user must be deleted")
		}
		left, err := store.FindByID(ctx, recipes, soup.ID())
		require.NoError(t, err)
		assert.Nil(t, left["userId"])

		_, err = store.Remove(ctx, users, ann.ID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

func newTestStore(t *testing.T) (*Store, *domain.Schema) {
	t.Helper()
	schema, err := domain.NewCatalog()
	require.NoError(t, err)

	store, err := Open(filepath.Join(t.TempDir(), "recipes.sqlite"), schema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	// Migrating twice is harmless.
	require.NoError(t, store.Migrate(context.Background()))
	return store, schema
}

func entity(t *testing.T, schema *domain.Schema, name string) *domain.Entity {
	t.Helper()
	e, err := schema.Entity(name)
	require.NoError(t, err)
	return e
}

func TestStore_CRUD(t *testing.T) {
	store, schema := newTestStore(t)
	recipes := entity(t, schema, domain.Recipes)
	ctx := context.Background()

	created, err := store.Create(ctx, recipes, domain.Record{"title": "Soup", "ingredients": "water, salt"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())
	assert.Equal(t, "Soup", created["title"])
	assert.Nil(t, created["imgUrl"])

	got, err := store.FindByID(ctx, recipes, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, got)

	patched, err := store.Update(ctx, recipes, created.ID(), domain.Record{"imgUrl": "http://img"})
	require.NoError(t, err)
	assert.Equal(t, "http://img", patched["imgUrl"])
	assert.Equal(t, "Soup", patched["title"])

	_, err = store.Update(ctx, recipes, "missing", domain.Record{"title": "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	removed, err := store.Remove(ctx, recipes, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created.ID(), removed.ID())

	_, err = store.FindByID(ctx, recipes, created.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Constraints(t *testing.T) {
	store, schema := newTestStore(t)
	users := entity(t, schema, domain.Users)
	messages := entity(t, schema, domain.Messages)
	ctx := context.Background()

	_, err := store.Create(ctx, users, domain.Record{"email": "a@b.c", "password": "x", "name": "Ann"})
	require.NoError(t, err)

	_, err = store.Create(ctx, users, domain.Record{"email": "a@b.c", "password": "y", "name": "Bob"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = store.Create(ctx, users, domain.Record{"email": "b@b.c", "name": "Bob"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = store.Create(ctx, messages, domain.Record{"text": "hi", "userId": "ghost"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	count := 0
	for _, err := range store.FindAll(ctx, users, domain.Filter{"email": "a@b.c"}) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestStore_FindAllFilters(t *testing.T) {
	store, schema := newTestStore(t)
	recipes := entity(t, schema, domain.Recipes)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "A"} {
		_, err := store.Create(ctx, recipes, domain.Record{"title": title})
		require.NoError(t, err)
	}

	seq := store.FindAll(ctx, recipes, domain.Filter{"title": "A", "$sort": "ignored"})
	for range 2 {
		n := 0
		for rec, err := range seq {
			require.NoError(t, err)
			assert.Equal(t, "A", rec["title"])
			n++
		}
		assert.Equal(t, 2, n)
	}
}

func TestStore_PairsAndCascade(t *testing.T) {
	store, schema := newTestStore(t)
	users := entity(t, schema, domain.Users)
	recipes := entity(t, schema, domain.Recipes)
	messages := entity(t, schema, domain.Messages)
	favourites, err := schema.Join(domain.Favourites)
	require.NoError(t, err)
	ctx := context.Background()

	ann, err := store.Create(ctx, users, domain.Record{"email": "a@b.c", "password": "x", "name": "Ann"})
	require.NoError(t, err)
	soup, err := store.Create(ctx, recipes, domain.Record{"title": "Soup", "userId": ann.ID()})
	require.NoError(t, err)
	_, err = store.Create(ctx, messages, domain.Record{"text": "hi", "userId": ann.ID()})
	require.NoError(t, err)

	require.NoError(t, store.AddPair(ctx, favourites, ann.ID(), soup.ID()))
	require.NoError(t, store.AddPair(ctx, favourites, ann.ID(), soup.ID()))

	ids, err := store.Pairs(ctx, favourites, domain.LeftSide, ann.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{soup.ID()}, ids)

	ids, err = store.Pairs(ctx, favourites, domain.RightSide, soup.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{ann.ID()}, ids)

	_, err = store.Remove(ctx, users, ann.ID())
	require.NoError(t, err)

	has, err := store.HasPair(ctx, favourites, ann.ID(), soup.ID())
	require.NoError(t, err)
	assert.False(t, has)

	left, err := store.FindByID(ctx, recipes, soup.ID())
	require.NoError(t, err)
	assert.Nil(t, left["userId"])

	for range store.FindAll(ctx, messages, nil) {
		t.Fatal("messages of a removed user must be deleted")
	}

	require.NoError(t, store.RemovePair(ctx, favourites, ann.ID(), soup.ID()))
}

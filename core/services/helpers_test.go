package services

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

const (
	testUserID   = "user-123"
	testRecipeID = "recipe-456"
)

func testCatalog(t *testing.T) *domain.Schema {
	t.Helper()
	schema, err := domain.NewCatalog()
	require.NoError(t, err)
	return schema
}

func testEntity(t *testing.T, schema *domain.Schema, name string) *domain.Entity {
	t.Helper()
	e, err := schema.Entity(name)
	require.NoError(t, err)
	return e
}

func testJoin(t *testing.T, schema *domain.Schema, name string) *domain.Join {
	t.Helper()
	j, err := schema.Join(name)
	require.NoError(t, err)
	return j
}

func records(recs ...domain.Record) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func failing(err error) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		yield(nil, err)
	}
}

func caller() *domain.Identity {
	return &domain.Identity{UserID: testUserID, TokenID: "token-1"}
}

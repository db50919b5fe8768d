package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

func TestNewRegistry_Pipelines(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ports.NewMockEntityStore(ctrl)
	joins := ports.NewMockJoinStore(ctrl)
	publisher := ports.NewMockEventPublisher(ctrl)
	log, _ := test.NewNullLogger()
	schema := testCatalog(t)

	resolver := NewResolver(schema, store, joins)
	require.NoError(t, ConfigureRelations(resolver))

	reg, err := NewRegistry(schema, store, resolver, publisher, log)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.Ingredients, domain.Messages, domain.Recipes, domain.Users}, reg.Collections())

	tests := []struct {
		collection string
		method     Method
		expected   []string
	}{
		{domain.Users, MethodCreate, []string{"hash-password", "handler", "protect", "publish"}},
		{domain.Users, MethodPatch, []string{"authenticate", "require-self", "hash-password", "handler", "protect", "publish"}},
		{domain.Users, MethodRemove, []string{"authenticate", "require-self", "handler", "protect", "publish"}},
		{domain.Users, MethodGet, []string{"handler", "protect"}},
		{domain.Recipes, MethodFind, []string{"handler", "populate:ingredientItems"}},
		{domain.Recipes, MethodCreate, []string{"handler", "publish"}},
		{domain.Ingredients, MethodGet, []string{"handler"}},
		{domain.Messages, MethodGet, []string{"handler", "populate:user"}},
		{domain.Messages, MethodCreate, []string{"authenticate", "assign-owner", "handler", "populate:user", "publish"}},
		{domain.Messages, MethodPatch, []string{"authenticate", "require-owner", "assign-owner", "handler", "populate:user", "publish"}},
		{domain.Messages, MethodRemove, []string{"authenticate", "require-owner", "handler", "populate:user", "publish"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection+"/"+string(tt.method), func(t *testing.T) {
			svc, err := reg.Service(tt.collection)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, svc.Pipeline().Describe(tt.method))
		})
	}

	assert.Equal(t, []string{"authenticate", "handler", "publish"}, reg.Favourites().Pipeline().Describe(MethodCreate))

	_, err = reg.Service("comments")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_Related(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ports.NewMockEntityStore(ctrl)
	joins := ports.NewMockJoinStore(ctrl)
	log, _ := test.NewNullLogger()
	schema := testCatalog(t)

	resolver := NewResolver(schema, store, joins)
	require.NoError(t, ConfigureRelations(resolver))
	reg, err := NewRegistry(schema, store, resolver, nil, log)
	require.NoError(t, err)

	store.EXPECT().FindByID(gomock.Any(), gomock.Any(), testUserID).Return(domain.Record{"id": testUserID}, nil)
	joins.EXPECT().Pairs(gomock.Any(), gomock.Any(), domain.LeftSide, testUserID).Return([]string{}, nil)

	related, err := reg.Related(context.Background(), domain.Users, testUserID, "favouriteRecipes")
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{}, related)

	_, err = reg.Related(context.Background(), domain.Favourites, testUserID, "user")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

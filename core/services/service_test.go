package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

func TestEntityService_Operations(t *testing.T) {
	errStore := errors.New("connection reset")
	recipe := domain.Record{"id": testRecipeID, "title": "Soup", "description": "Hot"}

	tests := []struct {
		name           string
		call           func(context.Context, *EntityService) (any, error)
		setupMocks     func(*domain.Entity, *ports.MockEntityStore)
		expectedError  error
		validateResult func(*testing.T, any)
	}{
		{
			name: "find passes the query filter",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Find(ctx, Params{Query: domain.Filter{"title": "Soup"}})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindAll(gomock.Any(), e, domain.Filter{"title": "Soup"}).Return(records(recipe))
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, []domain.Record{recipe}, res)
			},
		},
		{
			name: "find returns an empty list",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Find(ctx, Params{})
			},
			setupMocks: func(_ *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(records())
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, []domain.Record{}, res)
			},
		},
		{
			name: "find stops on store error",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Find(ctx, Params{})
			},
			setupMocks: func(_ *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(failing(errStore))
			},
			expectedError: errStore,
		},
		{
			name: "get",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Get(ctx, testRecipeID, Params{})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindByID(gomock.Any(), e, testRecipeID).Return(recipe, nil)
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, recipe, res)
			},
		},
		{
			name: "get without id",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Get(ctx, "", Params{})
			},
			expectedError: domain.ErrValidation,
		},
		{
			name: "create",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Create(ctx, domain.Record{"title": "Soup"}, Params{})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().Create(gomock.Any(), e, domain.Record{"title": "Soup"}).Return(recipe, nil)
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, recipe, res)
			},
		},
		{
			name: "update clears fields missing from the payload",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Update(ctx, testRecipeID, domain.Record{"title": "Stew", "id": "forged"}, Params{})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindByID(gomock.Any(), e, testRecipeID).Return(recipe, nil)
				store.EXPECT().
					Update(gomock.Any(), e, testRecipeID, domain.Record{
						"title":       "Stew",
						"description": nil,
						"ingredients": nil,
						"imgUrl":      nil,
						"userId":      nil,
					}).
					Return(domain.Record{"id": testRecipeID, "title": "Stew"}, nil)
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, domain.Record{"id": testRecipeID, "title": "Stew"}, res)
			},
		},
		{
			name: "update of missing record",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Update(ctx, "missing", domain.Record{"title": "Stew"}, Params{})
			},
			setupMocks: func(_ *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindByID(gomock.Any(), gomock.Any(), "missing").Return(nil, domain.ErrNotFound)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "patch writes only given fields",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Patch(ctx, testRecipeID, domain.Record{"description": "Cold", "unknown": 1}, Params{})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindByID(gomock.Any(), e, testRecipeID).Return(recipe, nil)
				store.EXPECT().
					Update(gomock.Any(), e, testRecipeID, domain.Record{"description": "Cold"}).
					Return(recipe.Merge(domain.Record{"description": "Cold"}), nil)
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, "Cold", res.(domain.Record)["description"])
			},
		},
		{
			name: "patch rejects non string values",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Patch(ctx, testRecipeID, domain.Record{"title": 5}, Params{})
			},
			setupMocks: func(_ *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().FindByID(gomock.Any(), gomock.Any(), testRecipeID).Return(recipe, nil)
			},
			expectedError: domain.ErrValidation,
		},
		{
			name: "remove returns the removed record",
			call: func(ctx context.Context, s *EntityService) (any, error) {
				return s.Remove(ctx, testRecipeID, Params{})
			},
			setupMocks: func(e *domain.Entity, store *ports.MockEntityStore) {
				store.EXPECT().Remove(gomock.Any(), e, testRecipeID).Return(recipe, nil)
			},
			validateResult: func(t *testing.T, res any) {
				assert.Equal(t, recipe, res)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := ports.NewMockEntityStore(ctrl)
			recipes := testEntity(t, testCatalog(t), domain.Recipes)
			if tt.setupMocks != nil {
				tt.setupMocks(recipes, store)
			}

			svc := NewEntityService(recipes, store, nil)
			res, err := tt.call(context.Background(), svc)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.validateResult(t, res)
		})
	}
}

func TestEntityService_DoesNotMutatePayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ports.NewMockEntityStore(ctrl)
	schema := testCatalog(t)
	users := testEntity(t, schema, domain.Users)

	store.EXPECT().Create(gomock.Any(), users, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Entity, data domain.Record) (domain.Record, error) {
			assert.NotEqual(t, "secret", data["password"])
			return data.Merge(domain.Record{"id": testUserID}), nil
		})

	svc := NewEntityService(users, store, NewPipeline().
		Before(HashPassword("password"), MethodCreate).
		After(Protect(users)))

	payload := domain.Record{"email": "a@b.c", "password": "secret", "name": "Ann"}
	rec, err := svc.Create(context.Background(), payload, Params{})
	require.NoError(t, err)

	assert.Equal(t, "secret", payload["password"])
	assert.NotContains(t, rec, "password")
	assert.Equal(t, testUserID, rec.ID())
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

func TestAuthenticateStage(t *testing.T) {
	stage := Authenticate()

	err := stage.Run(context.Background(), &Call{Entity: domain.Messages, Method: MethodCreate})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = stage.Run(context.Background(), &Call{Params: Params{Identity: &domain.Identity{}}})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.NoError(t, stage.Run(context.Background(), &Call{Params: Params{Identity: caller()}}))
}

func TestRequireSelfStage(t *testing.T) {
	stage := RequireSelf()

	err := stage.Run(context.Background(), &Call{Entity: domain.Users, Method: MethodPatch, ID: "other-user", Params: Params{Identity: caller()}})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = stage.Run(context.Background(), &Call{Entity: domain.Users, Method: MethodRemove, ID: testUserID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.NoError(t, stage.Run(context.Background(), &Call{ID: testUserID, Params: Params{Identity: caller()}}))
}

func TestRequireOwnerStage(t *testing.T) {
	messages := testEntity(t, testCatalog(t), domain.Messages)

	tests := []struct {
		name       string
		identity   *domain.Identity
		setupMocks func(*ports.MockEntityStore)
		wantErr    error
	}{
		{
			name:     "owner",
			identity: caller(),
			setupMocks: func(s *ports.MockEntityStore) {
				s.EXPECT().FindByID(gomock.Any(), messages, "msg-1").Return(domain.Record{"id": "msg-1", "userId": testUserID}, nil)
			},
		},
		{
			name:     "another user's message",
			identity: caller(),
			setupMocks: func(s *ports.MockEntityStore) {
				s.EXPECT().FindByID(gomock.Any(), messages, "msg-1").Return(domain.Record{"id": "msg-1", "userId": "other-user"}, nil)
			},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:     "missing message",
			identity: caller(),
			setupMocks: func(s *ports.MockEntityStore) {
				s.EXPECT().FindByID(gomock.Any(), messages, "msg-1").Return(nil, domain.ErrNotFound)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "anonymous",
			wantErr: domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := ports.NewMockEntityStore(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(store)
			}

			call := &Call{Entity: domain.Messages, Method: MethodUpdate, ID: "msg-1", Params: Params{Identity: tt.identity}}
			err := RequireOwner(store, messages, "userId").Run(context.Background(), call)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordStage(t *testing.T) {
	stage := HashPassword("password")

	call := &Call{Data: domain.Record{"password": "secret"}}
	require.NoError(t, stage.Run(context.Background(), call))
	hash := call.Data.String("password")
	assert.NotEqual(t, "secret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	// A patch without a password leaves the payload alone.
	call = &Call{Data: domain.Record{"name": "Ann"}}
	require.NoError(t, stage.Run(context.Background(), call))
	assert.Equal(t, domain.Record{"name": "Ann"}, call.Data)
}

func TestAssignOwnerStage(t *testing.T) {
	stage := AssignOwner("userId")

	call := &Call{Data: domain.Record{"text": "hi", "userId": "someone-else"}, Params: Params{Identity: caller()}}
	require.NoError(t, stage.Run(context.Background(), call))
	assert.Equal(t, testUserID, call.Data["userId"])

	assert.ErrorIs(t, stage.Run(context.Background(), &Call{}), domain.ErrUnauthorized)
}

func TestProtectStage(t *testing.T) {
	users := testEntity(t, testCatalog(t), domain.Users)
	stage := Protect(users)

	call := &Call{Result: []domain.Record{
		{"id": "u1", "password": "hash"},
		{"id": "u2", "password": "hash"},
	}}
	require.NoError(t, stage.Run(context.Background(), call))
	assert.Equal(t, []domain.Record{{"id": "u1"}, {"id": "u2"}}, call.Result)

	call = &Call{Result: domain.Record(nil)}
	require.NoError(t, stage.Run(context.Background(), call))
	assert.Nil(t, call.Result)
}

func TestPublishStage(t *testing.T) {
	errKafka := errors.New("broker not available")

	tests := []struct {
		name       string
		method     Method
		setupMocks func(*ports.MockEventPublisher)
		wantWarn   bool
	}{
		{
			name:   "publishes mutation",
			method: MethodPatch,
			setupMocks: func(p *ports.MockEventPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, e domain.Event) error {
						_, bounded := ctx.Deadline()
						assert.True(t, bounded)
						assert.Equal(t, domain.Recipes, e.Entity)
						assert.Equal(t, domain.ActionPatched, e.Action)
						assert.Equal(t, testRecipeID, e.Record.ID())
						return nil
					})
			},
		},
		{
			name:   "read is not published",
			method: MethodGet,
		},
		{
			name:   "failure is logged, not returned",
			method: MethodRemove,
			setupMocks: func(p *ports.MockEventPublisher) {
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errKafka)
			},
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			publisher := ports.NewMockEventPublisher(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(publisher)
			}
			log, hook := test.NewNullLogger()

			call := &Call{Entity: domain.Recipes, Method: tt.method, Result: domain.Record{"id": testRecipeID}}
			require.NoError(t, Publish(publisher, log).Run(context.Background(), call))

			if tt.wantWarn {
				require.NotNil(t, hook.LastEntry())
				assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
				return
			}
			assert.Empty(t, hook.AllEntries())
		})
	}
}

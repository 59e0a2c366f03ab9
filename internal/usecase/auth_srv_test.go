package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"watch-list/internal/data/entity"
	"watch-list/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	resp, err := env.svc.Auth.Register(context.Background(), &request.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User.ID
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Auth.Register(ctx, &request.RegisterRequest{
		Username: "alice", Email: "Alice@Example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, first.User.Role)
	assert.Equal(t, "alice@example.com", first.User.Email)
	assert.NotEmpty(t, first.Token)

	second, err := env.svc.Auth.Register(ctx, &request.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, second.User.Role)
}

func TestRegister_ConcurrentFirstUsers(t *testing.T) {
	env := newTestEnv(t)

	const n = 8
	var wg sync.WaitGroup
	roles := make([]entity.UserRole, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			resp, err := env.svc.Auth.Register(context.Background(), &request.RegisterRequest{
				Username: name, Email: name + "@example.com", Password: "password123",
			})
			if assert.NoError(t, err) {
				roles[i] = resp.User.Role
			}
		}()
	}
	wg.Wait()

	admins := 0
	for _, role := range roles {
		if role == entity.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestRegister_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     request.RegisterRequest
		wantErr error
	}{
		{
			name:    "email taken regardless of case",
			req:     request.RegisterRequest{Username: "other", Email: "ALICE@example.com", Password: "password123"},
			wantErr: ErrConflict,
		},
		{
			name:    "username taken",
			req:     request.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "password123"},
			wantErr: ErrConflict,
		},
		{
			name:    "short password",
			req:     request.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "short"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad email",
			req:     request.RegisterRequest{Username: "carol", Email: "not-an-email", Password: "password123"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			register(t, env, "alice")

			_, err := env.svc.Auth.Register(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegister_ValidationErrorCarriesFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Auth.Register(context.Background(), &request.RegisterRequest{Username: "a"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Username")
	assert.Contains(t, verr.Fields, "Email")
	assert.Contains(t, verr.Fields, "Password")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice")
	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		resp, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "ALICE@example.com", Password: "password123"})
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "alice", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "nobody", Password: "password123"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestLogin_RecordsOperationLog(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")

	_, err := env.svc.Auth.Login(context.Background(), &request.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	require.Len(t, env.store.Logs, 1)
	entry := env.store.Logs[0]
	assert.Equal(t, entity.ActionLogin, entry.Action)
	assert.Equal(t, "alice", entry.Username)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, userID, entry.UserID.String())
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")

	me, err := env.svc.Auth.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	_, err = env.svc.Auth.Me(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

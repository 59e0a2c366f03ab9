package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"watch-list/internal/data/entity"
	"watch-list/internal/dto/request"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromContext(t *testing.T) {
	assert.Equal(t, SystemActor, ActorFromContext(context.Background()))

	userID := uuid.New()
	ctx := utils.SetUserContext(context.Background(), userID, "alice", "admin")
	ctx = utils.SetClientIPContext(ctx, "203.0.113.7")

	actor := ActorFromContext(ctx)
	require.NotNil(t, actor.UserID)
	assert.Equal(t, userID, *actor.UserID)
	assert.Equal(t, "alice", actor.Username)
	assert.Equal(t, "203.0.113.7", actor.IP)
}

func TestRecord_SwallowsWriteErrors(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailNext = errors.New("connection refused")

	assert.NotPanics(t, func() {
		env.svc.OperationLog.Record(context.Background(), SystemActor, entity.ActionImport, entity.ResourceMovie, nil, "Heat", nil)
	})
	assert.Empty(t, env.store.Logs)
}

func TestRecord_SurvivesCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env.svc.OperationLog.Record(ctx, SystemActor, entity.ActionDelete, entity.ResourceActor, nil, "Val Kilmer", nil)
	require.Len(t, env.store.Logs, 1)
	assert.Equal(t, "system", env.store.Logs[0].Username)
}

func TestOperationLogList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	aliceID := uuid.New()
	alice := Actor{UserID: &aliceID, Username: "alice"}

	env.svc.OperationLog.Record(ctx, alice, entity.ActionImport, entity.ResourceMovie, nil, "Heat", nil)
	env.svc.OperationLog.Record(ctx, alice, entity.ActionDelete, entity.ResourceMovie, nil, "Heathers", nil)
	env.svc.OperationLog.Record(ctx, SystemActor, entity.ActionImport, entity.ResourceTV, nil, "Fargo", nil)

	tests := []struct {
		name string
		req  request.OperationLogListRequest
		want []string
	}{
		{name: "all newest first", want: []string{"Fargo", "Heathers", "Heat"}},
		{name: "by action", req: request.OperationLogListRequest{Action: "import"}, want: []string{"Fargo", "Heat"}},
		{name: "by resource type", req: request.OperationLogListRequest{ResourceType: "tv"}, want: []string{"Fargo"}},
		{name: "by user", req: request.OperationLogListRequest{UserID: aliceID.String()}, want: []string{"Heathers", "Heat"}},
		{name: "by name", req: request.OperationLogListRequest{Query: "heat"}, want: []string{"Heathers", "Heat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.PaginatedRequest = firstPage
			page, err := env.svc.OperationLog.List(ctx, &req)
			require.NoError(t, err)

			var names []string
			for _, entry := range page.Data {
				names = append(names, *entry.ResourceName)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), page.Pagination.Total)
		})
	}

	_, err := env.svc.OperationLog.List(ctx, &request.OperationLogListRequest{PaginatedRequest: firstPage, Action: "explode"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOperationLogGet(t *testing.T) {
	env := newTestEnv(t)
	env.svc.OperationLog.Record(context.Background(), SystemActor, entity.ActionImport, entity.ResourceMovie, nil, "Heat",
		map[string]any{"tmdb_id": 949})

	entry, err := env.svc.OperationLog.Get(context.Background(), env.store.Logs[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "import", entry.Action)
	assert.Equal(t, 949, entry.Details["tmdb_id"])

	_, err = env.svc.OperationLog.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOperationLogPrune(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.svc.OperationLog.Record(ctx, SystemActor, entity.ActionImport, entity.ResourceMovie, nil, "recent", nil)
	env.store.Logs = append(env.store.Logs, &entity.OperationLog{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now().AddDate(-2, 0, 0)},
		Action:     entity.ActionLogin,
	})

	deleted, err := env.svc.OperationLog.Prune(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, env.store.Logs, 1)

	_, err = env.svc.OperationLog.Prune(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOperationLogBackfill(t *testing.T) {
	env := newTestEnv(t)
	userID := register(t, env, "alice")
	movie := seedMovie(env, "Heat", 1)
	parsed := uuid.MustParse(userID)
	env.store.Logs = append(env.store.Logs, &entity.OperationLog{
		BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:       &parsed,
		Action:       entity.ActionUpdate,
		ResourceType: entity.ResourceMovie,
		ResourceID:   &movie.ID,
	})

	touched, err := env.svc.OperationLog.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), touched)
	assert.Equal(t, "alice", env.store.Logs[0].Username)
	assert.Equal(t, "Heat", *env.store.Logs[0].ResourceName)
}

package service_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, e *env) service.AuthService {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.db.WithContext(ctx).Create(&model.Role{Name: "player", Description: "Regular player"}).Error)
	userRepo := repository.NewUserRepository(e.db)
	return service.NewAuthService(userRepo, e.rules, "test-secret", e.log)
}

func TestRegisterIssuesTokenAndWelcomeBonus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.ruleRepo.Create(ctx, &model.EarningRule{
		Name:           "Welcome Bonus",
		TriggerAction:  model.TriggerUserRegistered,
		PointTypeSlug:  model.PointTypeBetcoins,
		PointsAwarded:  100,
		MaxTotalAwards: intPtr(1),
		Active:         true,
	}))
	e.refresh(t)
	auth := newAuth(t, e)

	resp, err := auth.Register(ctx, service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotNil(t, resp.User)

	balance, err := e.points.GetBalance(ctx, resp.User.ID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Balance)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(t, e)
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, service.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = auth.Register(ctx, service.RegisterInput{Username: "alice", Email: "other@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(t, e)
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "supersecret"})
	require.NoError(t, err)

	resp, err := auth.Login(ctx, service.LoginInput{Email: "bob@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = auth.Login(ctx, service.LoginInput{Email: "bob@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = auth.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/mock"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestClientAuthSvc — хелпер: сервис на реальном in-memory SQLite и
// gomock-адаптере.
func newTestClientAuthSvc(t *testing.T, ctrl *gomock.Controller) (ClientAuthService, *store.ClientStorages, *mock.MockServerAdapter) {
	t.Helper()

	storages, err := store.NewClientStorages(
		config.Storage{Local: config.LocalDB{Path: ":memory:"}},
		logger.Nop(),
	)
	require.NoError(t, err)

	mockAdapter := mock.NewMockServerAdapter(ctrl)
	svc := NewClientAuthService(storages, mockAdapter, logger.Nop())

	return svc, storages, mockAdapter
}

// ── Register ─────────────────────────────────────────────────────────────────

func TestClientAuthService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, storages, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	user := models.User{Login: "alice", Password: "secret"}
	mockAdapter.EXPECT().Register(ctx, user).
		Return(models.Token{SignedString: "signed-jwt", UserID: 42}, nil)

	session, err := svc.Register(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, "alice", session.Login)
	assert.Equal(t, "signed-jwt", session.Token)

	// сессия сохранена для следующего запуска
	saved, err := storages.SessionRepository.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "signed-jwt", saved.Token)
}

func TestClientAuthService_Register_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Register(ctx, gomock.Any()).
		Return(models.Token{}, adapter.ErrConflict)

	_, err := svc.Register(ctx, models.User{Login: "alice", Password: "secret"})
	assert.ErrorIs(t, err, store.ErrLoginAlreadyExists)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestClientAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, storages, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	user := models.User{Login: "alice", Password: "secret"}
	mockAdapter.EXPECT().Login(ctx, user).
		Return(models.Token{SignedString: "signed-jwt", UserID: 42}, nil)

	session, err := svc.Login(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)

	saved, err := storages.SessionRepository.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.UserID)
}

func TestClientAuthService_Login_WrongCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Login(ctx, gomock.Any()).
		Return(models.Token{}, adapter.ErrUnauthorized)

	_, err := svc.Login(ctx, models.User{Login: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestClientAuthService_Login_Offline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Login(ctx, gomock.Any()).
		Return(models.Token{}, adapter.ErrOffline)

	_, err := svc.Login(ctx, models.User{Login: "alice", Password: "secret"})
	assert.ErrorIs(t, err, adapter.ErrOffline)
}

// ── RestoreSession / Logout ──────────────────────────────────────────────────

func TestClientAuthService_RestoreSession_RearmsToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, storages, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	require.NoError(t, storages.SessionRepository.SaveSession(ctx, models.Session{
		UserID: 42, Login: "alice", Token: "stored-jwt",
	}))

	mockAdapter.EXPECT().SetToken("stored-jwt")

	session, err := svc.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, "stored-jwt", session.Token)
}

func TestClientAuthService_RestoreSession_NoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestClientAuthSvc(t, ctrl)

	_, err := svc.RestoreSession(context.Background())
	assert.ErrorIs(t, err, store.ErrLocalSessionNotFound)
}

func TestClientAuthService_Logout_ClearsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, storages, mockAdapter := newTestClientAuthSvc(t, ctrl)
	ctx := context.Background()

	require.NoError(t, storages.SessionRepository.SaveSession(ctx, models.Session{
		UserID: 42, Login: "alice", Token: "stored-jwt",
	}))

	mockAdapter.EXPECT().SetToken("")

	require.NoError(t, svc.Logout(ctx))

	_, err := storages.SessionRepository.GetSession(ctx)
	assert.ErrorIs(t, err, store.ErrLocalSessionNotFound)
}

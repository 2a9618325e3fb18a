package client

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/mock"
	"github.com/MKhiriev/go-task-keeper/internal/service"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()

	storages, err := store.NewClientStorages(
		config.Storage{Local: config.LocalDB{Path: ":memory:"}},
		logger.Nop(),
	)
	require.NoError(t, err)
	return storages
}

func newTestApp(t *testing.T, serverAdapter adapter.ServerAdapter, storages *store.ClientStorages) *App {
	t.Helper()

	services := service.NewClientServices(
		storages,
		serverAdapter,
		config.Workers{SyncInterval: time.Minute, ProbeInterval: time.Minute},
		logger.Nop(),
	)

	app, err := NewApp(services, serverAdapter, config.ClientWorkers{SyncInterval: time.Minute}, logger.Nop())
	require.NoError(t, err)
	return app
}

// allowBackgroundCalls разрешает вызовы, которые фоновые воркеры делают в
// произвольные моменты: пробы health, загрузки списка, подписку на события.
func allowBackgroundCalls(serverAdapter *mock.MockServerAdapter) {
	serverAdapter.EXPECT().Health(gomock.Any()).Return(nil).AnyTimes()
	serverAdapter.EXPECT().FetchAll(gomock.Any()).Return([]models.Task{}, nil).AnyTimes()
	serverAdapter.EXPECT().Subscribe(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (<-chan models.TaskEvent, error) {
			events := make(chan models.TaskEvent)
			go func() {
				<-ctx.Done()
				close(events)
			}()
			return events, nil
		}).AnyTimes()
}

// ─────────────────────────────────────────────
// NewApp
// ─────────────────────────────────────────────

func TestNewApp_RequiresServices(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	_, err := NewApp(nil, serverAdapter, config.ClientWorkers{}, logger.Nop())
	assert.Error(t, err)
}

func TestNewApp_RequiresAdapter(t *testing.T) {
	_, err := NewApp(&service.ClientServices{}, nil, config.ClientWorkers{}, logger.Nop())
	assert.Error(t, err)
}

// ─────────────────────────────────────────────
// Run
// ─────────────────────────────────────────────

func TestRun_NoSessionNoCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	app := newTestApp(t, serverAdapter, newTestStorages(t))

	err := app.Run(context.Background(), models.User{}, false)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestRun_RestoredSessionRunsUntilCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	storages := newTestStorages(t)
	require.NoError(t, storages.SessionRepository.SaveSession(context.Background(), models.Session{
		UserID: 42,
		Login:  "alice",
		Token:  "stored-jwt",
	}))

	// восстановление сессии перевзводит токен в адаптере
	serverAdapter.EXPECT().SetToken("stored-jwt")
	allowBackgroundCalls(serverAdapter)

	app := newTestApp(t, serverAdapter, storages)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, models.User{}, false)
	assert.NoError(t, err)
}

func TestRun_LoginWhenNoStoredSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	storages := newTestStorages(t)

	serverAdapter.EXPECT().
		Login(gomock.Any(), models.User{Login: "alice", Password: "secret"}).
		Return(models.Token{UserID: 42, SignedString: "fresh-jwt"}, nil)
	allowBackgroundCalls(serverAdapter)

	app := newTestApp(t, serverAdapter, storages)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, models.User{Login: "alice", Password: "secret"}, false)
	require.NoError(t, err)

	// сессия сохранена локально и переживёт перезапуск
	session, err := storages.SessionRepository.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, "fresh-jwt", session.Token)
}

func TestRun_RegisterWhenRequested(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	storages := newTestStorages(t)

	serverAdapter.EXPECT().
		Register(gomock.Any(), models.User{Login: "bob", Password: "hunter2"}).
		Return(models.Token{UserID: 7, SignedString: "new-jwt"}, nil)
	allowBackgroundCalls(serverAdapter)

	app := newTestApp(t, serverAdapter, storages)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, models.User{Login: "bob", Password: "hunter2"}, true)
	require.NoError(t, err)

	session, err := storages.SessionRepository.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
}

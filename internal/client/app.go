package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/service"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/workers"
	"github.com/MKhiriev/go-task-keeper/models"
)

// resubscribeDelay is how long the event-stream consumer waits before
// retrying a failed subscription.
const resubscribeDelay = 5 * time.Second

type App struct {
	services      *service.ClientServices
	serverAdapter adapter.ServerAdapter
	workersCfg    config.ClientWorkers
	logger        *logger.Logger
}

func NewApp(services *service.ClientServices, serverAdapter adapter.ServerAdapter, workersCfg config.ClientWorkers, logger *logger.Logger) (*App, error) {
	if services == nil {
		return nil, errors.New("client services are required")
	}
	if serverAdapter == nil {
		return nil, errors.New("server adapter is required")
	}

	return &App{
		services:      services,
		serverAdapter: serverAdapter,
		workersCfg:    workersCfg,
		logger:        logger,
	}, nil
}

// Run starts the client runtime and blocks until ctx is cancelled.
//
// credentials are used only when no session is stored locally: with register
// set a new account is created, otherwise a login is attempted. Once the
// session is ready the engine is scoped to its user, the task set is loaded
// (degrading to the local mirror when offline), the background workers start,
// and the server event stream is consumed until shutdown.
func (a *App) Run(ctx context.Context, credentials models.User, register bool) error {
	session, err := a.signIn(ctx, credentials, register)
	if err != nil {
		return err
	}
	a.logger.Info().Int64("user_id", session.UserID).Str("login", session.Login).Msg("session ready")

	a.services.SyncService.SetUser(session.UserID)

	// первичная загрузка; offline деградирует до локального зеркала
	if _, err := a.services.SyncService.Load(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("initial load failed")
	}

	// очередь мутаций реплеится на каждом переходе offline→online
	a.services.Monitor.OnOnline(func() {
		if err := a.services.SyncService.DrainQueue(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("drain queue")
		}
	})

	background := workers.NewWorkers(
		workers.NewMonitorWorker(a.services.Monitor),
		workers.NewSyncJobWorker(a.services.SyncJob, a.workersCfg.SyncInterval),
	)
	background.Run(ctx)
	defer background.Stop()

	go a.consumeRemoteEvents(ctx)

	<-ctx.Done()
	a.logger.Info().Msg("client shutting down")

	return nil
}

// signIn restores the stored session or creates one from credentials.
func (a *App) signIn(ctx context.Context, credentials models.User, register bool) (models.Session, error) {
	session, err := a.services.AuthService.RestoreSession(ctx)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, store.ErrLocalSessionNotFound) {
		return models.Session{}, fmt.Errorf("restore session: %w", err)
	}

	if credentials.Login == "" || credentials.Password == "" {
		return models.Session{}, ErrNoCredentials
	}

	if register {
		return a.services.AuthService.Register(ctx, credentials)
	}
	return a.services.AuthService.Login(ctx, credentials)
}

// consumeRemoteEvents keeps a subscription to the server event stream open,
// folding every pushed change into the engine. A dropped stream is
// re-established after resubscribeDelay; the loop exits with ctx.
func (a *App) consumeRemoteEvents(ctx context.Context) {
	for {
		events, err := a.serverAdapter.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.logger.Debug().Err(err).Msg("event stream unavailable, retrying")

			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeDelay):
			}
			continue
		}

		a.logger.Info().Msg("subscribed to server events")
		for event := range events {
			a.services.SyncService.ApplyRemoteEvent(ctx, event)
		}

		if ctx.Err() != nil {
			return
		}
		// поток закрылся — переподключаемся
	}
}

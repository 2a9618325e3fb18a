package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/models"
)

type clientAuthService struct {
	localStore *store.ClientStorages
	adapter    adapter.ServerAdapter

	logger *logger.Logger
}

// NewClientAuthService constructs a [ClientAuthService] wired to the given
// local storages and server adapter.
func NewClientAuthService(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{localStore: localStore, adapter: serverAdapter, logger: logger}
}

// Register implements [ClientAuthService].
func (a *clientAuthService) Register(ctx context.Context, user models.User) (models.Session, error) {
	token, err := a.adapter.Register(ctx, user)
	if err != nil {
		return models.Session{}, fmt.Errorf("register on server: %w", mapAdapterError(err))
	}

	return a.persistSession(ctx, user.Login, token)
}

// Login implements [ClientAuthService]. An HTTP 401 from the server means the
// credentials were rejected, which surfaces as ErrWrongPassword.
func (a *clientAuthService) Login(ctx context.Context, user models.User) (models.Session, error) {
	token, err := a.adapter.Login(ctx, user)
	if err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) {
			return models.Session{}, ErrWrongPassword
		}
		return models.Session{}, fmt.Errorf("login on server: %w", mapAdapterError(err))
	}

	return a.persistSession(ctx, user.Login, token)
}

// RestoreSession implements [ClientAuthService].
func (a *clientAuthService) RestoreSession(ctx context.Context) (models.Session, error) {
	session, err := a.localStore.SessionRepository.GetSession(ctx)
	if err != nil {
		return models.Session{}, err
	}

	a.adapter.SetToken(session.Token)
	return session, nil
}

// Logout implements [ClientAuthService].
func (a *clientAuthService) Logout(ctx context.Context) error {
	a.adapter.SetToken("")

	if err := a.localStore.SessionRepository.DeleteSession(ctx); err != nil {
		return fmt.Errorf("delete local session: %w", err)
	}

	return nil
}

func (a *clientAuthService) persistSession(ctx context.Context, login string, token models.Token) (models.Session, error) {
	log := logger.FromContext(ctx)

	session := models.Session{
		UserID:  token.UserID,
		Login:   login,
		Token:   token.SignedString,
		SavedAt: time.Now().UTC(),
	}

	if err := a.localStore.SessionRepository.SaveSession(ctx, session); err != nil {
		// сервер уже выдал токен, работать можно и без сохранённой сессии
		log.Warn().Err(err).Str("login", login).Msg("failed to persist session locally")
	}

	return session, nil
}

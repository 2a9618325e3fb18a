package service

import (
	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
)

type ClientServices struct {
	AuthService ClientAuthService
	SyncService TaskSyncService
	SyncJob     ClientSyncJob
	Monitor     ConnectivityMonitor
}

func NewClientServices(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, workersCfg config.Workers, logger *logger.Logger) *ClientServices {
	authSvc := NewClientAuthService(localStore, serverAdapter, logger)
	syncSvc := NewTaskSyncService(localStore, serverAdapter, logger)

	return &ClientServices{
		AuthService: authSvc,
		SyncService: syncSvc,
		SyncJob:     NewClientSyncJob(syncSvc),
		Monitor:     NewConnectivityMonitor(serverAdapter, workersCfg.ProbeInterval, logger),
	}
}

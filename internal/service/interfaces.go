package service

import "context"

// StatusProvider exposes the state of the sync manager to the status surface.
type StatusProvider interface {
	Status() Status
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

var _ StatusProvider = (*SyncManager)(nil)

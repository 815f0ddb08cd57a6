package service

import (
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/models"
)

// Services groups what the status surface reads from.
type Services struct {
	AppInfoService AppInfoService
	StatusProvider StatusProvider
}

func NewServices(manager *SyncManager, info models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(info, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AppInfoService: appInfo,
		StatusProvider: manager,
	}, nil
}

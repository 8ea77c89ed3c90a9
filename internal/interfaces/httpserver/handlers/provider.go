package handlers

import (
	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
)

// Provider wires HTTP handlers.
type Provider struct {
	Uploads *UploadHandler
	Records *RecordHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Uploads: NewUploadHandler(cfg, service, log),
		Records: NewRecordHandler(cfg, service, log),
	}
}

// Package snapshot provides the campaign snapshot bounded context module.
package snapshot

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/audiostore"
	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/internal/snapshot/handler"
	"campaign_audio_backend/internal/snapshot/repository"
	"campaign_audio_backend/internal/snapshot/service"
	"campaign_audio_backend/platform/config"
	"campaign_audio_backend/platform/logger"
)

// Module is the snapshot bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the snapshot module.
func NewModule(pool *pgxpool.Pool, store *audiostore.Store, lock *audiostore.StoreLock, cfg config.StorageConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, lock, log)
	h := handler.New(svc, cfg.GetMaxUploadSize())

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "snapshot"
}

// RegisterRoutes mounts snapshot routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/export/package/:generation_no", m.handler.Export)
	ctx.V1.POST("/import/upload", m.handler.Import)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package campaigns provides the campaign ingestion bounded context module.
package campaigns

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/audiostore"
	"campaign_audio_backend/internal/campaigns/handler"
	"campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/internal/campaigns/service"
	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/internal/jobs"
	"campaign_audio_backend/platform/logger"
	"campaign_audio_backend/platform/validator"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the campaigns module.
func NewModule(pool *pgxpool.Pool, voices service.VoicePool, store *audiostore.Store, lock *audiostore.StoreLock, dispatcher jobs.LeadDispatcher, cfg service.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, voices, store, lock, dispatcher, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts campaign routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/campaigns")
	group.POST("/upload", m.handler.Upload)
	group.GET("/audio/:phone_number", m.handler.AudioStatus)
	group.GET("/leads", m.handler.ListLeads)
	group.POST("/leads/delete", m.handler.DeleteLeads)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

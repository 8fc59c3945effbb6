// Package voices provides the voice pool bounded context module.
package voices

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/audiostore"
	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/internal/voices/handler"
	"campaign_audio_backend/internal/voices/repository"
	"campaign_audio_backend/internal/voices/service"
	"campaign_audio_backend/platform/logger"
	"campaign_audio_backend/platform/validator"
)

// Module is the voice pool bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the voices module.
func NewModule(pool *pgxpool.Pool, store *audiostore.Store, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "voices"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts voice pool routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	groups := ctx.V1.Group("/voices")
	groups.POST("/groups", m.handler.CreateGroup)
	groups.GET("/groups", m.handler.ListGroups)
	groups.DELETE("/groups/:id", m.handler.DeleteGroup)
	groups.POST("/groups/:id/voices", m.handler.UploadVoice)
	groups.DELETE("/:id", m.handler.DeleteVoice)
	groups.POST("/:id/toggle", m.handler.ToggleVoice)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

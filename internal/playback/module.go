// Package playback provides the dialer-facing playback bounded context module.
package playback

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/internal/playback/handler"
	"campaign_audio_backend/internal/playback/repository"
	"campaign_audio_backend/internal/playback/service"
)

// Module is the playback bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the playback module.
func NewModule(pool *pgxpool.Pool, cfg service.Config) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "playback"
}

// RegisterRoutes mounts the dialer routes. The dialer group carries its
// own per-IP rate limiting.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Dialer.GET("/random_audio/:generation_no/:audio_type", m.handler.RandomAudio)
	ctx.Dialer.GET("/specific_audio/:lead_key/:audio_type", m.handler.SpecificAudio)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

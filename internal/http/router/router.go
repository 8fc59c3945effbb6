// Package router assembles the Gin engine from the application modules.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "campaign_audio_backend/internal/http"
	"campaign_audio_backend/platform/httpkit"
)

// New builds the HTTP router: middleware, health check, static audio
// mounts and every module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				status = gin.H{"status": "degraded", "database": err.Error()}
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	})

	// Generated lead audio and uploaded voice assets are served straight
	// from disk. The dialer fetches playback URLs from /audio.
	engine.Static("/audio", app.Config.GetAudioStoragePath())
	engine.Static("/voices", app.Config.GetVoiceStoragePath())

	limiter := httpkit.NewIPRateLimiter(
		rate.Limit(app.Config.GetDialerRateLimit()),
		app.Config.GetDialerRateBurst(),
		app.Logger,
	)

	v1 := engine.Group("/api/v1")
	dialer := v1.Group("/dialer")
	dialer.Use(limiter.RateLimit())

	ctx := &apphttp.RouterContext{
		Engine:            engine,
		V1:                v1,
		Dialer:            dialer,
		DialerRateLimiter: limiter,
	}
	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}

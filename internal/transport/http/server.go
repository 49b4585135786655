package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pinlive-server/internal/config"
	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/store"
)

// NewServer builds the HTTP server: health, metrics, the websocket endpoint,
// the presence API and the user sync API.
func NewServer(hub *core.Hub, verifier IdentityVerifier, users store.UserStore, gatherer prometheus.Gatherer, cfg *config.Config, logger *zerolog.Logger) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	wsHandler := NewWSHandler(hub, cfg, logger)
	router.GET("/ws", AuthMiddleware(verifier, hub.Reject, logger), wsHandler.Handle)

	api := router.Group("/api")
	api.Use(AuthMiddleware(verifier, nil, logger))
	{
		presenceHandlers := NewPresenceHandlers(hub)
		api.GET("/presence/:userId", presenceHandlers.GetPresence)
	}

	// Called by the account service, not by end users.
	userSync := router.Group("/api/users")
	userSync.Use(ServiceAuthMiddleware(cfg.ServiceToken, logger))
	{
		userHandlers := NewUserHandlers(users, verifier, logger)
		userSync.PUT("/:id", userHandlers.UpsertUser)
		userSync.DELETE("/:id", userHandlers.DeleteUser)
	}

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Rendezvous/internal/adapters/signal"
	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/app/orch"
	"github.com/dkeye/Rendezvous/internal/auth"
	"github.com/dkeye/Rendezvous/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// BodyLimit caps request bodies at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func iceServers(cfg *config.Config) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

// SetupRouter wires the auth endpoints, the read-only API and the signaling
// websocket. ctx bounds the lifetime of every websocket session; the returned
// controller lets the caller wait for those sessions on shutdown.
func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	o *orch.Orchestrator,
	creds *app.Credentials,
	tokens *auth.TokenService,
) (*gin.Engine, *signal.SignalWSController) {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(BodyLimit(cfg.BodyLimit))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("RendezvousSessions", store))

	authH := &AuthHandlers{
		Creds:   creds,
		Tokens:  tokens,
		TTL:     cfg.TokenTTL,
		Limiter: NewLoginRateLimiter(cfg.LoginRateLimit, cfg.LoginRateInterval),
	}
	ctrl := signal.NewSignalWSController(o, tokens, signal.Options{
		QueueSize:      cfg.SendQueue,
		WriteWait:      cfg.WriteWait,
		ReadLimit:      cfg.ReadLimit,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	ice := iceServers(cfg)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, P2P Chat Signaling Server!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/register", authH.Register)
	r.POST("/login", authH.Login)

	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/me", authH.Me)
	api.POST("/logout", authH.Logout)
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice})
	})

	return r, ctrl
}

package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Rendezvous/internal/app/orch"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	DefaultQueueSize = 32
	DefaultWriteWait = 10 * time.Second
)

// TokenVerifier is the part of the token service admission needs.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

type Options struct {
	QueueSize      int
	WriteWait      time.Duration
	ReadLimit      int64
	// AllowedOrigins restricts browser Origin headers. Empty allows any.
	AllowedOrigins []string
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Tokens   TokenVerifier
	opts     Options
	upgrader websocket.Upgrader
	sessions sync.WaitGroup
}

func NewSignalWSController(o *orch.Orchestrator, tokens TokenVerifier, opts Options) *SignalWSController {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = DefaultWriteWait
	}
	ctl := &SignalWSController{
		Orch:   o,
		Tokens: tokens,
		opts:   opts,
	}
	ctl.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return ctl
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and, when allowed is set, only the listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Wait blocks until every admitted session has finished its teardown, or
// until ctx ends.
func (ctl *SignalWSController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ctl.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleSignal admits the connection when the token query parameter
// verifies, then serves it until either side closes. ctx is the server
// lifetime; cancelling it tears the session down.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	identity, err := ctl.Tokens.Verify(c.Query("token"))
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("remote", c.ClientIP()).Msg("ws admission rejected")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// Add must happen before the upgrade hijacks the connection; until then
	// http.Server.Shutdown still waits for this request.
	ctl.sessions.Add(1)
	defer ctl.sessions.Done()

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sess := newWsSession(core.NewSessionID(), identity, ws, ctl.opts.QueueSize)
	log.Info().Str("module", "signal").Str("sid", string(sess.id)).Str("user", string(identity)).Msg("new WS connection")
	ctl.serve(ctx, sess)
}

package signal

import (
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/origin"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// SignalWSController owns the WebSocket side of signaling. It decodes
// frames and hands every event to the loop; it never touches orchestrator
// state directly.
type SignalWSController struct {
	Orch *orch.Orchestrator
	Loop *orch.Loop

	cfg      *config.Config
	limiter  *RateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, loop *orch.Loop, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:    o,
		Loop:    loop,
		cfg:     cfg,
		limiter: NewRateLimiter(cfg.RateLimit.Events, cfg.RateLimit.Interval),
	}
	ctl.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     ctl.checkOrigin,
	}
	return ctl
}

// WsSignalConn is the outbound sink of one socket. Frames queue on send
// and are written by the write pump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

// Close stops the write pump, which then closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" {
		// Not a browser.
		return true
	}
	normalized, host, ok := origin.NormalizeHeader(header)
	if ok && origin.IsAllowed(normalized, host, r.Host, ctl.cfg.AllowedOrigins) {
		return true
	}
	log.Warn().Str("module", "signal").Str("origin", header).Msg("origin rejected")
	return false
}

func (ctl *SignalWSController) HandleSignal(c *gin.Context) {
	cid := domain.NewConnID()
	token := c.GetString("client_token")
	if token == "" {
		token = string(cid)
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("client", token).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	if !ctl.Loop.Submit("connect", func() { ctl.Orch.Connect(cid, conn) }) {
		_ = ws.Close()
		return
	}

	go ctl.writePump(conn)
	go ctl.readPump(cid, token, conn)
}

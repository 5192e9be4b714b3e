package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/harborfs/backend/internal/infrastructure/logging"
	"github.com/harborfs/backend/internal/providers/search"
	"github.com/harborfs/backend/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope every client frame arrives in.
type Message struct {
	Type    string              `json:"type"`
	Query   types.SearchQuery   `json:"query"`
	Options types.SearchOptions `json:"options"`
}

// Handler manages WebSocket connections for streaming search.
type Handler struct {
	engine *search.Engine
	log    *logging.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(engine *search.Engine, log *logging.Logger) *Handler {
	return &Handler{engine: engine, log: log}
}

// conn serializes writes; the search goroutine and the read loop both
// emit frames.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// HandleConnection handles the WebSocket upgrade and the message loop.
// One search runs at a time per connection; a new search or an explicit
// cancel frame cancels the one in flight.
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	connID := uuid.NewString()
	cn := &conn{ws: ws}
	h.log.Debug("websocket connected", zap.String("conn_id", connID))

	cn.send(map[string]interface{}{
		"type":    "system",
		"message": "connected",
		"conn_id": connID,
	})

	reqCtx := c.Request.Context()
	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	defer func() {
		if cancel != nil {
			cancel()
		}
		wg.Wait()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			h.log.Debug("websocket closed", zap.String("conn_id", connID), zap.Error(err))
			return
		}
		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cn.send(map[string]interface{}{"type": "error", "message": "malformed frame"})
			continue
		}

		switch msg.Type {
		case "search":
			if cancel != nil {
				cancel()
				wg.Wait()
			}
			var ctx context.Context
			ctx, cancel = context.WithCancel(reqCtx)
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.runSearch(ctx, cn, msg)
			}()
		case "cancel":
			if cancel != nil {
				cancel()
			}
		case "ping":
			cn.send(map[string]interface{}{"type": "pong"})
		default:
			cn.send(map[string]interface{}{"type": "error", "message": "unknown message type"})
		}
	}
}

// runSearch streams matches as they are found and closes with a complete
// frame carrying the traversal outcome. A cancelled search still gets
// its complete frame so the client can settle.
func (h *Handler) runSearch(ctx context.Context, cn *conn, msg Message) {
	sink := search.SinkFunc(func(m types.SearchMatch) error {
		return cn.send(map[string]interface{}{
			"type":  "match",
			"match": m,
		})
	})

	res, err := h.engine.SearchByContent(ctx, msg.Query, msg.Options, sink)
	if err != nil {
		cn.send(map[string]interface{}{
			"type":      "error",
			"message":   err.Error(),
			"timestamp": time.Now().Unix(),
		})
		return
	}
	cn.send(map[string]interface{}{
		"type":      "complete",
		"limit_hit": res.LimitHit,
		"skipped":   res.Skipped,
		"cancelled": ctx.Err() != nil,
		"timestamp": time.Now().Unix(),
	})
}

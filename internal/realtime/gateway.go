package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"markethub/internal/domain"
	"markethub/internal/feed"
	"markethub/internal/livesync"
	"markethub/internal/pkg/jwt"
	"markethub/internal/pkg/response"
	"markethub/internal/pkg/validator"
	"markethub/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxFrameSize  = 4096
	eventBacklog  = 64
	outboxBacklog = 256
)

// Gateway is the websocket endpoint for live queries. One socket carries
// any number of subscriptions, each identified by a client-chosen sub id;
// every subscription owns a view that scopes and translates the raw change
// feed before frames go out.
type Gateway struct {
	bus      *feed.Bus
	streams  *Streams
	sessions *session.Manager
	jwt      *jwt.Service
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewGateway(bus *feed.Bus, streams *Streams, sessions *session.Manager, jwtService *jwt.Service) *Gateway {
	g := &Gateway{
		bus:      bus,
		streams:  streams,
		sessions: sessions,
		jwt:      jwtService,
		hub:      NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set headers on websocket dials, so origin
			// policy is enforced by the CORS layer in front of the upgrade.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	// Logout and role changes kill the socket, not just the token.
	sessions.OnRevoke(func(s session.Session) {
		g.hub.CloseSession(s.ID)
	})
	return g
}

func (g *Gateway) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", g.Handle)
}

// Handle authenticates, upgrades and runs the socket until the client
// disconnects or the session is revoked.
func (g *Gateway) Handle(c *gin.Context) {
	token := tokenFromRequest(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization token required")
		return
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	sess, ok := g.sessions.Get(claims.ID)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session has been revoked")
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("realtime: upgrade failed")
		return
	}

	g.hub.Register(sess.ID, conn)
	defer g.hub.Unregister(sess.ID, conn)

	g.serve(c, conn, sess)
}

type subscription struct {
	table string
	ch    chan feed.Event
}

type client struct {
	conn *websocket.Conn
	out  chan ServerFrame
	done chan struct{}
	subs map[string]*subscription
}

func (g *Gateway) serve(c *gin.Context, conn *websocket.Conn, sess session.Session) {
	cl := &client{
		conn: conn,
		out:  make(chan ServerFrame, outboxBacklog),
		done: make(chan struct{}),
		subs: make(map[string]*subscription),
	}

	go g.writeLoop(cl)
	g.readLoop(c, cl, sess)

	// Teardown. Closing done unblocks any subscription goroutine mid-send;
	// unsubscribing closes the feed channels and ends their loops.
	close(cl.done)
	for _, sub := range cl.subs {
		g.bus.Unsubscribe(sub.table, sub.ch)
	}
	conn.Close()
}

func (g *Gateway) readLoop(c *gin.Context, cl *client, sess session.Session) {
	cl.conn.SetReadLimit(maxFrameSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame ClientFrame
		if err := cl.conn.ReadJSON(&frame); err != nil {
			return
		}

		if fields := validator.Validate(frame); fields != nil {
			cl.send(ServerFrame{
				Type: FrameError, SubID: frame.SubID,
				Code: "INVALID_FRAME", Message: "Malformed frame",
			})
			continue
		}

		switch frame.Action {
		case ActionSubscribe:
			g.subscribe(c, cl, sess, frame)
		case ActionUnsubscribe:
			g.unsubscribe(cl, frame.SubID)
		}
	}
}

func (g *Gateway) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-cl.out:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(frame); err != nil {
				cl.conn.Close()
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.conn.Close()
				return
			}
		case <-cl.done:
			return
		}
	}
}

func (g *Gateway) subscribe(c *gin.Context, cl *client, sess session.Session, frame ClientFrame) {
	if _, exists := cl.subs[frame.SubID]; exists {
		cl.send(ServerFrame{
			Type: FrameError, SubID: frame.SubID,
			Code: "DUPLICATE_SUB", Message: "Subscription id already in use",
		})
		return
	}

	var filters domain.SearchFilters
	if frame.Filters != nil {
		filters = *frame.Filters
	}

	match, err := g.streams.Matcher(sess, frame.Table, filters)
	if err != nil {
		cl.send(ServerFrame{
			Type: FrameError, SubID: frame.SubID,
			Code: "UNKNOWN_TABLE", Message: "No such table",
		})
		return
	}

	// Subscribe before loading the snapshot so no delta falls in the gap.
	// A write that lands in both is harmless, the view applies it
	// idempotently.
	ch := make(chan feed.Event, eventBacklog)
	g.bus.Subscribe(frame.Table, ch)

	rows, err := g.streams.Snapshot(c.Request.Context(), sess, frame.Table, filters)
	if err != nil {
		g.bus.Unsubscribe(frame.Table, ch)
		log.Error().Err(err).Str("table", frame.Table).Msg("realtime: snapshot failed")
		cl.send(ServerFrame{
			Type: FrameError, SubID: frame.SubID,
			Code: "SNAPSHOT_FAILED", Message: "Failed to load initial data",
		})
		return
	}

	view := livesync.NewView(match)
	rows = view.Seed(rows)

	cl.subs[frame.SubID] = &subscription{table: frame.Table, ch: ch}
	cl.send(ServerFrame{Type: FrameSnapshot, SubID: frame.SubID, Table: frame.Table, Rows: rows})

	go func() {
		for evt := range ch {
			out, ok := view.Apply(evt)
			if !ok {
				continue
			}
			cl.send(ServerFrame{Type: FrameChange, SubID: frame.SubID, Table: frame.Table, Event: &out})
		}
	}()
}

func (g *Gateway) unsubscribe(cl *client, subID string) {
	sub, ok := cl.subs[subID]
	if !ok {
		cl.send(ServerFrame{
			Type: FrameError, SubID: subID,
			Code: "UNKNOWN_SUB", Message: "No such subscription",
		})
		return
	}
	delete(cl.subs, subID)
	g.bus.Unsubscribe(sub.table, sub.ch)
	cl.send(ServerFrame{Type: FrameClosed, SubID: subID})
}

// send queues a frame without blocking teardown.
func (cl *client) send(frame ServerFrame) {
	select {
	case cl.out <- frame:
	case <-cl.done:
	}
}

func tokenFromRequest(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/sirupsen/logrus"
)

// Message is what clients send.
type Message struct {
	Type    string  `json:"type"`
	Power   float64 `json:"power"`
	Loft    float64 `json:"loft"`
	Surface string  `json:"surface"`
	Wind    float64 `json:"wind"`
	Seed    *int64  `json:"seed"`
}

// ShotPoint is one sampled position of a streamed flight.
type ShotPoint struct {
	Type  string  `json:"type"`
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Handler upgrades requests and plays shots sent over the socket.
type Handler struct {
	Hub      *Hub
	Sessions *session.Manager
	Env      golf.Environment
	upgrader websocket.Upgrader
}

// NewHandler builds a websocket handler. checkOrigin may be nil to accept
// every origin; origin filtering normally happens in middleware.
func NewHandler(hub *Hub, sessions *session.Manager, env golf.Environment, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		Hub:      hub,
		Sessions: sessions,
		Env:      env,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleWebSocket serves GET /ws. With ?bag=<id> the client follows that bag
// session and may play its club in hand.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	bagID := c.Query("bag")
	if bagID != "" {
		if _, err := h.Sessions.Get(c.Request.Context(), bagID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "bag session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag session"})
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithComponent("ws").WithError(err).Warn("websocket upgrade failed")
		return
	}

	id := uuid.NewString()
	client := &Client{
		id:    id,
		bagID: bagID,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		log: logger.WithComponent("ws").WithFields(logrus.Fields{
			"client_id": id,
			"bag_id":    bagID,
		}),
	}
	select {
	case h.Hub.register <- client:
	case <-h.Hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		select {
		case h.Hub.unregister <- c:
		case <-h.Hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("unexpected websocket close")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}

		switch msg.Type {
		case "ping":
			c.sendJSON(gin.H{"type": "pong"})
		case "shot":
			h.playShot(c, msg)
		case "bag_shot":
			h.playBagShot(c, msg)
		default:
			c.sendError("unknown message type: " + msg.Type)
		}
	}
}

func seedOf(msg Message) int64 {
	if msg.Seed != nil {
		return *msg.Seed
	}
	return time.Now().UnixNano()
}

// playShot simulates a free shot and streams it back to the sender.
func (h *Handler) playShot(c *Client, msg Message) {
	env := h.Env
	env.Wind = msg.Wind

	var tr golf.Trajectory
	var err error
	if msg.Surface == "" {
		tr, err = golf.SimulatePath(msg.Power, msg.Loft, env, session.PathSampleEvery)
	} else {
		var terrain golf.TerrainType
		terrain, err = golf.TerrainByName(msg.Surface)
		if err == nil {
			rng := rand.New(rand.NewSource(seedOf(msg)))
			tr, err = golf.SimulateShot(msg.Power, msg.Loft, env, terrain, rng, session.PathSampleEvery)
		}
	}
	if err != nil {
		c.sendError(err.Error())
		return
	}
	streamTrajectory(c, tr, nil)
}

// playBagShot plays the club in hand of the client's bag session and
// streams the flight to every client following that bag.
func (h *Handler) playBagShot(c *Client, msg Message) {
	if c.bagID == "" {
		c.sendError("not joined to a bag session")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := h.Sessions.TakeShot(ctx, c.bagID, msg.Surface, seedOf(msg))
	if err != nil {
		c.sendError(err.Error())
		return
	}

	h.Hub.mu.RLock()
	defer h.Hub.mu.RUnlock()
	for _, follower := range h.Hub.bags[c.bagID] {
		streamTrajectory(follower, res.Trajectory, gin.H{"club": res.Club, "state": res.State, "seed": res.Seed})
	}
}

// streamTrajectory sends the sampled flight point by point and then the
// shot result. Points stop early when the client falls behind; the result
// is always queued.
func streamTrajectory(c *Client, tr golf.Trajectory, extra gin.H) {
	sent := 0
	for i, p := range tr.Path {
		if !c.hasRoom(resultReserve) {
			break
		}
		data, _ := json.Marshal(ShotPoint{Type: "shot_point", Index: i, X: p.X, Y: p.Y})
		if !c.enqueue(data) {
			break
		}
		sent++
	}
	if sent < len(tr.Path) {
		c.log.WithFields(logrus.Fields{"sent": sent, "points": len(tr.Path)}).Debug("shot path truncated for slow client")
	}

	summary := tr
	summary.Path = nil
	result := gin.H{"type": "shot_result", "trajectory": summary, "points": sent, "truncated": sent < len(tr.Path)}
	for k, v := range extra {
		result[k] = v
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal shot result")
		return
	}
	c.deliver(data)
}

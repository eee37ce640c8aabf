package handler

import (
	"encoding/json"
	"net/http"
	"spotnsort/metrics"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"
	"spotnsort/worker"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = 54 * time.Second
)

// ReportFeed publishes applied report snapshots
type ReportFeed interface {
	Subscribe() (<-chan worker.Snapshot, func())
	Latest() *worker.Snapshot
}

// LiveMessage is pushed to websocket clients on every new snapshot. Citizens get
// counts over their own reports, authorities over all.
type LiveMessage struct {
	Type    string              `json:"type"`
	Seq     uint64              `json:"seq"`
	Count   int                 `json:"count"`
	Summary models.StatusCounts `json:"summary"`
}

// LiveHandler replaces browser polling with a websocket push
type LiveHandler struct {
	feed     ReportFeed
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(feed ReportFeed) *LiveHandler {
	return &LiveHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is open for every other endpoint too
			},
		},
	}
}

// BuildLiveMessage scopes a snapshot to user
func BuildLiveMessage(snap worker.Snapshot, user *models.User) LiveMessage {
	reports := snap.Reports
	if user.Role == models.RoleUser {
		reports = service.OwnedBy(reports, user.Email)
	}
	return LiveMessage{
		Type:    "reports",
		Seq:     snap.Seq,
		Count:   len(reports),
		Summary: models.CountStatuses(reports),
	}
}

// Serve handles GET /live
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("[live] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.LiveClients.Inc()
	defer metrics.LiveClients.Dec()
	log.WithFields(log.Fields{"email": user.Email, "role": user.Role}).Info("[live] client connected")

	snapshots, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go readPump(conn, done)

	if latest := h.feed.Latest(); latest != nil {
		if err := writeLive(conn, BuildLiveMessage(*latest, user)); err != nil {
			return
		}
	}

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(liveWriteWait))
				return
			}
			if err := writeLive(conn, BuildLiveMessage(snap, user)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-done:
			log.WithField("email", user.Email).Info("[live] client disconnected")
			return
		}
	}
}

// readPump drains client frames so pongs and close frames are processed
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[live] read error: %v", err)
			}
			return
		}
	}
}

func writeLive(conn *websocket.Conn, msg LiveMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteMessage(websocket.TextMessage, raw)
}

package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/model"
)

// WSMessage is the envelope pushed to report subscribers.
type WSMessage struct {
	Type    string      `json:"type"` // "report"
	Host    string      `json:"host,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

const writeWait = 5 * time.Second

// ReportHub fans every new fleet report out to websocket subscribers
// (dashboards, terminals). Subscribers may filter by host with ?host=.
type ReportHub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[*websocket.Conn]*subscriber
	log      zerolog.Logger
}

type subscriber struct {
	host string
	wmu  sync.Mutex
}

func NewReportHub() *ReportHub {
	return &ReportHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: map[*websocket.Conn]*subscriber{},
		log:  dlog.WithComponent("ws"),
	}
}

// HandleSubscribe upgrades the request and registers a subscriber. The
// latest report is not replayed; clients fetch it over HTTP.
func (h *ReportHub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str(dlog.FieldRemote, r.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	sub := &subscriber{host: r.URL.Query().Get("host")}
	h.mu.Lock()
	h.subs[c] = sub
	h.mu.Unlock()
	h.log.Info().Str(dlog.FieldRemote, r.RemoteAddr).Str(dlog.FieldHost, sub.host).Msg("report subscriber connected")
	go h.readLoop(c)
}

// Subscribers returns the number of connected subscribers.
func (h *ReportHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast sends report to every subscriber whose host filter matches.
func (h *ReportHub) Broadcast(report model.FleetReport) {
	msg := WSMessage{Type: "report", Host: report.Host, Payload: report}
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*subscriber, len(h.subs))
	for c, s := range h.subs {
		if s.host == "" || s.host == report.Host {
			targets[c] = s
		}
	}
	h.mu.RUnlock()

	for c, s := range targets {
		s.wmu.Lock()
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.WriteJSON(msg)
		s.wmu.Unlock()
		if err != nil {
			go h.closeSub(c)
		}
	}
}

// readLoop discards client frames and notices disconnects.
func (h *ReportHub) readLoop(c *websocket.Conn) {
	defer h.closeSub(c)
	for {
		if _, _, err := c.NextReader(); err != nil {
			return
		}
	}
}

func (h *ReportHub) closeSub(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.subs[c]
	delete(h.subs, c)
	h.mu.Unlock()
	_ = c.Close()
	if ok {
		h.log.Info().Msg("report subscriber disconnected")
	}
}

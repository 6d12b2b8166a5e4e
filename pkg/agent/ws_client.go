package agent

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/model"
)

// reportMessage mirrors the envelope the controller pushes on its feed.
type reportMessage struct {
	Type    string            `json:"type"`
	Host    string            `json:"host,omitempty"`
	Payload model.FleetReport `json:"payload"`
}

// Watcher follows the controller's report feed and reconnects on failure.
type Watcher struct {
	endpoint string
	Retry    time.Duration
	Log      zerolog.Logger
}

// NewWatcher builds a watcher for controller (http or https base URL). An
// empty host follows every host.
func NewWatcher(controller, host string) (*Watcher, error) {
	u, err := url.Parse(strings.TrimRight(controller, "/"))
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	default:
		return nil, fmt.Errorf("unsupported controller scheme %q", u.Scheme)
	}
	u.Path += "/api/v1/ws/reports"
	if host != "" {
		q := u.Query()
		q.Set("host", host)
		u.RawQuery = q.Encode()
	}
	return &Watcher{endpoint: u.String(), Retry: 5 * time.Second, Log: dlog.WithComponent("watch")}, nil
}

func (w *Watcher) Endpoint() string { return w.endpoint }

// Run calls fn for every report until ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(model.FleetReport)) error {
	for {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, w.endpoint, nil)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			w.Log.Warn().Err(err).Str("url", w.endpoint).Int("status", status).Msg("ws dial failed")
		} else {
			w.Log.Info().Str("url", w.endpoint).Msg("ws connected to controller")
			w.readLoop(ctx, conn, fn)
			w.Log.Info().Dur("retry", w.Retry).Msg("ws disconnected")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.Retry):
		}
	}
}

func (w *Watcher) readLoop(ctx context.Context, conn *websocket.Conn, fn func(model.FleetReport)) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()
	for {
		var msg reportMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "report" {
			w.Log.Debug().Str("type", msg.Type).Msg("ws message ignored")
			continue
		}
		fn(msg.Payload)
	}
}

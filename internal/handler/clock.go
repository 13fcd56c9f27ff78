package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 512,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type clockMessage struct {
	Elapsed string `json:"elapsed"`
}

// ProfileClock pushes the time since the player was last online once a second
// until the client goes away or the server shuts down.
func (h *Handler) ProfileClock(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "username", username, "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan string, 1)
	pv := view.NewProfileView(h.dir,
		view.WithTicker(h.ticker),
		view.WithElapsedListener(func(elapsed string) {
			// Drop the update when the writer is behind; the next tick replaces it.
			select {
			case updates <- elapsed:
			default:
			}
		}),
	)
	id := h.sessions.SaveView(pv)
	defer h.sessions.DeleteView(id)

	if err := pv.Load(r.Context(), username); err != nil || !pv.Ticking() {
		closeConn(conn, "no live clock")
		return
	}
	slog.Debug("Clock session started", "session", id.String(), "username", username)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := writeClock(conn, pv.Elapsed()); err != nil {
		return
	}
	for {
		select {
		case elapsed := <-updates:
			if err := writeClock(conn, elapsed); err != nil {
				slog.Debug("Clock write failed", "session", id.String(), "error", err)
				return
			}
		case <-pv.Done():
			closeConn(conn, "server shutting down")
			return
		case <-gone:
			return
		}
	}
}

func writeClock(conn *websocket.Conn, elapsed string) error {
	payload, err := json.Marshal(clockMessage{Elapsed: elapsed})
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func closeConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		slog.Debug("Error sending close frame", "error", err)
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"
	"trip-route-service/internal/platform/obs"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Stream pushes a snapshot over a websocket on connect and after every applied route.
// Client messages are ignored.
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.Log.Warn("websocket accept failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	updates, unsubscribe := sess.Controller.Subscribe()
	defer unsubscribe()

	// CloseRead discards client frames and cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-updates:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, snapshotResponse(sess, snap))
			cancel()
			if err != nil {
				h.Log.Debug("websocket write failed", zap.String("session_id", sess.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

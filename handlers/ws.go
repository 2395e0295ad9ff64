package handlers

import (
	"log/slog"
	"net/http"

	"Bingearr/middleware"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Session cookie auth already ran; same-origin policy is enforced by
	// the browser for cookie-bearing requests.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (a *API) Websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	a.Hub.Attach(middleware.AccountID(r), conn)
}

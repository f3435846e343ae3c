package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tickPayload is one live sample pushed over a subscribed websocket
// while the matching single-mode run is in flight.
type tickPayload struct {
	T          float64 `json:"t"`
	Route      int     `json:"route"`
	AnalyzerOK int     `json:"analyzer_ok"`
	TT106      float64 `json:"TT106"`
	Rho15      float64 `json:"rho15"`
	Lv201      float64 `json:"Lv201"`
}

// handleStream upgrades the connection and registers it under {id} in
// the stream registry. It pushes nothing itself: a subsequent
// POST /v1/run whose streamID matches {id} has its sinkAdapter push
// tick/event/done frames here as that run executes. The connection is
// held open, reading only to notice client-initiated close, until the
// client disconnects or the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "missing stream id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	lc := s.streams.register(id, conn)
	defer s.streams.unregister(id)

	if err := lc.writeJSON(map[string]string{"type": "subscribed", "streamId": id}); err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

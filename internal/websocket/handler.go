package websocket

import (
	"encoding/json"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/roomboard/internal/model"
)

// SnapshotSource yields the current snapshot of a room.
type SnapshotSource interface {
	RoomSnapshot(roomID string) (model.Snapshot, bool)
}

// HandleWebSocket upgrades /ws?room={id} and streams that room's
// snapshots, starting with the current one.
func HandleWebSocket(hub *Hub, source SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		snap, ok := source.RoomSnapshot(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // tablets load the page from the LAN address
		})
		if err != nil {
			hub.logger.Error("accept", "room", roomID, "error", err)
			return
		}

		client := NewClient(hub, conn, roomID)
		if data, err := json.Marshal(NewSnapshotMessage(snap)); err == nil {
			client.Enqueue(data)
		}
		client.Run(r.Context())
	}
}

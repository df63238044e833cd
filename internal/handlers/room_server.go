// internal/handlers/room_server.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/game"
)

// RoomServer owns the room registry and dispatches room commands. The engine
// never reaches outward: all broadcasting, persistence and authorization
// live here.
type RoomServer struct {
	Store  *game.RoomStore
	Logger *logrus.Logger
}

// NewRoomServer creates a RoomServer with an empty registry.
func NewRoomServer(logger *logrus.Logger) *RoomServer {
	return &RoomServer{
		Store:  game.NewRoomStore(),
		Logger: logger,
	}
}

// CreateRoomHandler handles POST /room/create. It authenticates (or mints) a
// user and registers a fresh room with that user as host, returning the join
// code. The host still joins over the WebSocket like everyone else.
func (rs *RoomServer) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := EnsureEphemeralUser(w, r)
	if err != nil {
		rs.Logger.Warnf("Failed to authenticate room creator: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	room := rs.Store.CreateRoom(userID)
	rs.Logger.Infof("Room %s created by user %s", room.Code(), userID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"roomCode": room.Code()})
}

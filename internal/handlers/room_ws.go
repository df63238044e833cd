// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/cache"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/database"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/game"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/middleware"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// RoomWSHandler upgrades the HTTP connection to a WebSocket for one room.
// It authenticates the user (minting an ephemeral guest if needed), seats or
// reseats them in the room, and runs the command read loop until the
// connection drops.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract room code from URL path: /room/ws/{code}
		code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/room/ws/"))
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "Missing room code in path (/room/ws/{code})", http.StatusBadRequest)
			return
		}

		room, ok := rs.Store.GetRoom(code)
		if !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"rummy"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", code, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "rummy" {
			logger.Warnf("Client for room %s connected with invalid subprotocol: %s", code, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'rummy' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed for room %s: %v", code, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}

		name := displayName(r, userID)

		// Seat the player: reconnect if they already hold a seat, otherwise
		// join. A started game only admits returning players.
		if room.HasPlayer(userID) {
			room.Reconnect(c, userID)
			logger.Infof("Player %s (%s) reconnected to room %s", name, userID, code)
			rs.notifyRoom(room, fmt.Sprintf("%s reconnected", name))
		} else {
			if room.Started() {
				c.Close(websocket.StatusPolicyViolation, "Game already in progress.")
				return
			}
			if err := room.AddPlayer(userID, name, c); err != nil {
				logger.Warnf("Player %s rejected from room %s: %v", userID, code, err)
				c.Close(websocket.StatusPolicyViolation, "Room is full.")
				return
			}
			logger.Infof("Player %s (%s) joined room %s", name, userID, code)
			rs.notifyRoom(room, fmt.Sprintf("%s joined the room", name))
		}
		sendWsMessage(r.Context(), c, map[string]interface{}{
			"type":     "room_joined",
			"roomCode": room.Code(),
			"playerId": userID,
		})
		rs.broadcastState(room)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readRoomCommands(ctx, c, rs, room, userID, logger)

		// Cleanup after the read loop exits.
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
		if empty := room.MarkDisconnected(c); empty {
			rs.Store.DeleteRoom(room.Code())
			logger.Infof("Room %s emptied and evicted", room.Code())
			return
		}
		rs.notifyRoom(room, fmt.Sprintf("%s disconnected", name))
		rs.broadcastState(room)
	}
}

// displayName picks the player's room display name: the ?name= query
// parameter wins, then the stored username, then "Guest".
func displayName(r *http.Request, userID uuid.UUID) string {
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		return name
	}
	if u, err := database.GetUserByID(r.Context(), userID); err == nil && u.Username != "" {
		return u.Username
	}
	return "Guest"
}

// readRoomCommands reads command envelopes off the socket and dispatches
// them until the connection closes or the context is canceled.
func readRoomCommands(ctx context.Context, c *websocket.Conn, rs *RoomServer, room *game.Room, userID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for user %s in room %s.", userID, room.Code())
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for user %s in room %s.", userID, room.Code())
			} else {
				logger.Warnf("Error reading from WebSocket for user %s in room %s: %v (Status: %d)", userID, room.Code(), err, status)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from user %s in room %s. Ignoring.", msgType, userID, room.Code())
			continue
		}

		var cmd models.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warnf("Invalid JSON from user %s in room %s: %v. Data: %s", userID, room.Code(), err, string(data))
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		if cmd.Type == "ping" {
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
			continue
		}

		logger.Debugf("Received command '%s' from user %s in room %s.", cmd.Type, userID, room.Code())
		rs.dispatch(ctx, c, room, userID, cmd)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// dispatch runs a single room command: guard first, then the engine
// operation, then the fan-out. Engine errors go back to the issuer only;
// successful commands are journaled and broadcast.
func (rs *RoomServer) dispatch(ctx context.Context, c *websocket.Conn, room *game.Room, userID uuid.UUID, cmd models.Command) {
	if err := guardCommand(room, userID, cmd.Type); err != nil {
		sendWsError(ctx, c, err.Error())
		return
	}

	actor := room.PlayerName(userID)
	payload := map[string]interface{}{}

	switch cmd.Type {
	case "start_game":
		room.Deal()
		rs.notifyRoom(room, fmt.Sprintf("Game started. It is %s's turn.", room.CurrentPlayerName()))

	case "draw_deck":
		if _, err := room.DrawFromDeck(userID); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		rs.notifyRoom(room, fmt.Sprintf("%s drew from the deck", actor))

	case "draw_discard":
		count := cmd.Count
		if count == 0 {
			count = 1
		}
		if _, err := room.DrawFromDiscard(userID, count); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		payload["count"] = count
		rs.notifyRoom(room, fmt.Sprintf("%s took %d card(s) from the discard pile", actor, count))

	case "meld_cards":
		if err := room.MeldCards(userID, cmd.Indices); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		payload["indices"] = cmd.Indices
		rs.notifyRoom(room, fmt.Sprintf("%s laid down a meld", actor))

	case "layoff_cards":
		if err := room.LayOffCards(userID, cmd.Indices, cmd.MeldIndex); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		payload["indices"] = cmd.Indices
		payload["meldIndex"] = cmd.MeldIndex
		rs.notifyRoom(room, fmt.Sprintf("%s laid off on a meld", actor))

	case "discard_card":
		result, err := room.DiscardCard(userID, cmd.CardIndex)
		if err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		payload["cardIndex"] = cmd.CardIndex
		switch result {
		case game.RoundEnd:
			rs.broadcastRoundEnd(room, false)
		case game.MatchWon:
			rs.broadcastRoundEnd(room, true)
			rs.recordMatch(room, userID)
		default:
			rs.notifyRoom(room, fmt.Sprintf("It is %s's turn.", room.CurrentPlayerName()))
		}

	case "call_rummy":
		card, err := room.CallRummy(userID)
		if err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		payload["card"] = card
		rs.notifyRoom(room, fmt.Sprintf("%s called Rummy on the %s%s!", actor, card.Rank, card.Suit))

	case "next_round":
		if err := room.StartNewRound(); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		room.Deal()
		rs.notifyRoom(room, fmt.Sprintf("New round. It is %s's turn.", room.CurrentPlayerName()))

	default:
		rs.Logger.Warnf("Unknown command type '%s' from user %s in room %s.", cmd.Type, userID, room.Code())
		sendWsError(ctx, c, fmt.Sprintf("Unknown command type: %s", cmd.Type))
		return
	}

	rs.journal(room.Code(), userID, cmd.Type, payload)
	rs.broadcastState(room)
}

// broadcastState pushes a fresh per-player projection to every connected
// seat. Each player receives only what they are allowed to see.
func (rs *RoomServer) broadcastState(room *game.Room) {
	for _, rec := range room.Recipients() {
		snap, err := room.Snapshot(rec.ID)
		if err != nil {
			rs.Logger.Errorf("Failed to build snapshot for player %s in room %s: %v", rec.ID, room.Code(), err)
			continue
		}
		go sendWsMessage(context.Background(), rec.Conn, map[string]interface{}{
			"type":  "room_state",
			"state": snap,
		})
	}
}

// notifyRoom fans a human-readable event line out to every connected seat.
func (rs *RoomServer) notifyRoom(room *game.Room, message string) {
	for _, rec := range room.Recipients() {
		go sendWsMessage(context.Background(), rec.Conn, map[string]interface{}{
			"type":    "notification",
			"message": message,
		})
	}
}

// broadcastRoundEnd publishes the score sheet for the finished round, and
// the winner when the match is decided.
func (rs *RoomServer) broadcastRoundEnd(room *game.Room, matchWon bool) {
	payload := map[string]interface{}{
		"type":   "round_end",
		"scores": room.RoundScores(),
	}
	if matchWon {
		if winnerID, ok := room.Winner(); ok {
			payload["type"] = "match_won"
			payload["winner"] = room.PlayerName(winnerID)
			payload["winnerId"] = winnerID
		}
	}
	for _, rec := range room.Recipients() {
		go sendWsMessage(context.Background(), rec.Conn, payload)
	}
}

// journal queues the accepted command for the historian. Failures are
// logged and swallowed: the game never blocks on its audit trail.
func (rs *RoomServer) journal(roomCode string, actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	record := cache.RoomActionRecord{
		RoomCode:      roomCode,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.PublishRoomAction(ctx, record); err != nil {
		rs.Logger.Warnf("Failed to journal action %s for room %s: %v", actionType, roomCode, err)
	}
}

// recordMatch writes the final score sheet to the database in the
// background once a match concludes.
func (rs *RoomServer) recordMatch(room *game.Room, reporterID uuid.UUID) {
	winnerID, ok := room.Winner()
	if !ok {
		return
	}
	snap, err := room.Snapshot(reporterID)
	if err != nil {
		rs.Logger.Errorf("Failed to snapshot room %s for match record: %v", room.Code(), err)
		return
	}

	results := make([]database.MatchResult, len(snap.Players))
	for i, p := range snap.Players {
		results[i] = database.MatchResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			DidWin:   p.ID == winnerID,
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.RecordMatchResult(ctx, room.Code(), winnerID, results); err != nil {
			rs.Logger.Errorf("Failed to record match result for room %s: %v", room.Code(), err)
		}
	}()
}

// sendWsMessage marshals a message and writes it to the client with a
// bounded timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		log.Println("Error: Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		status := websocket.CloseStatus(err)
		if strings.Contains(err.Error(), "context deadline exceeded") {
			log.Printf("Timeout writing WebSocket message: %v", err)
		} else if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			log.Printf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
		// Let the read loop handle connection closure detection.
	}
}

// sendWsError sends a structured error message to one client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

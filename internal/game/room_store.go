package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const roomCodeLength = 6

// RoomStore is the registry mapping join codes to live rooms. It replaces
// any ambient global map: rooms are created and evicted explicitly through
// the store by the dispatcher layer.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom mints a unique join code and registers a fresh room under it,
// owned by the given host.
func (s *RoomStore) CreateRoom(hostID uuid.UUID) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := newRoomCode()
	for _, taken := s.rooms[code]; taken; _, taken = s.rooms[code] {
		code = newRoomCode()
	}
	room := NewRoom(code, hostID)
	s.rooms[code] = room
	return room
}

func (s *RoomStore) GetRoom(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

func (s *RoomStore) DeleteRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Len returns the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func newRoomCode() string {
	b := make([]byte, roomCodeLength)
	for i := range b {
		b[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(b)
}

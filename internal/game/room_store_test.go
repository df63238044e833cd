// internal/game/room_store_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStoreCreateAndGet(t *testing.T) {
	s := NewRoomStore()
	hostID := uuid.New()

	room := s.CreateRoom(hostID)
	require.NotNil(t, room)
	assert.Len(t, room.Code(), 6)
	assert.Equal(t, hostID, room.HostID())

	got, ok := s.GetRoom(room.Code())
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = s.GetRoom("NOSUCH")
	assert.False(t, ok)
}

func TestRoomStoreUniqueCodes(t *testing.T) {
	s := NewRoomStore()
	codes := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room := s.CreateRoom(uuid.New())
		assert.False(t, codes[room.Code()], "codes must be unique")
		codes[room.Code()] = true
	}
	assert.Equal(t, 100, s.Len())
}

func TestRoomStoreDelete(t *testing.T) {
	s := NewRoomStore()
	room := s.CreateRoom(uuid.New())

	s.DeleteRoom(room.Code())
	_, ok := s.GetRoom(room.Code())
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

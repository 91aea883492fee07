package realtime

import "fmt"

// Room types clients may join explicitly. User rooms are join-on-auth only.
const (
	RoomChannel = "channel"
	RoomTeam    = "team"
	RoomProject = "project"
	RoomUser    = "user"
)

// RoomKey is the single canonical room-name function. Every event name
// alias (joinRoom vs join-channel) resolves through here so both client
// conventions land in the same multicast group.
func RoomKey(roomType string, id uint) string {
	return fmt.Sprintf("%s_%d", roomType, id)
}

func ChannelRoom(id uint) string { return RoomKey(RoomChannel, id) }
func TeamRoom(id uint) string    { return RoomKey(RoomTeam, id) }
func ProjectRoom(id uint) string { return RoomKey(RoomProject, id) }
func UserRoom(id uint) string    { return RoomKey(RoomUser, id) }

// ValidRoomType reports whether clients may join rooms of this type.
func ValidRoomType(roomType string) bool {
	switch roomType {
	case RoomChannel, RoomTeam, RoomProject:
		return true
	}
	return false
}

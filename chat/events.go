package chat

// Wire event names fanned out to socket rooms.
const (
	EventChannelCreated = "channel:created"

	EventMessageCreated = "message:created"
	EventMessageUpdated = "message:updated"
	EventMessageDeleted = "message:deleted"

	EventReactionAdded   = "reaction:added"
	EventReactionRemoved = "reaction:removed"

	EventTeamMemberAdded   = "team:member:added"
	EventTeamMemberRemoved = "team:member:removed"
	EventTeamRoleChanged   = "team:member:roleChanged"
	EventOwnerTransferred  = "team:owner:transferred"
)

// Publisher fans an event out to every socket joined to a room. Delivery is
// best-effort; implementations must not block the caller.
type Publisher interface {
	Broadcast(room, event string, payload interface{})
}

// NopPublisher drops all events. Used where no gateway is wired (tests,
// one-off tools).
type NopPublisher struct{}

func (NopPublisher) Broadcast(room, event string, payload interface{}) {}

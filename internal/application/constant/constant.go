package constant

// Attribute keys for structured logging.
const (
	Error     = "error"
	ConnID    = "conn_id"
	RoomID    = "room_id"
	UserID    = "user_id"
	MessageID = "message_id"
	EventType = "event_type"
)

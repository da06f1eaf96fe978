package models

// Event names pushed over live connections.
const (
	EventNewMessage  = "newMessage"
	EventOnlineUsers = "getOnlineUsers"
)

// Event is a single frame pushed to a live connection.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

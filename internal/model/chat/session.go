package chat

// Session is what a client receives after passing the join check. RoomID
// doubles as the assistant memory key.
type Session struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

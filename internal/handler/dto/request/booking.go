package request

// RoomID is deliberately unvalidated at the binding layer; the rule engine
// decides what a malformed id means, so a zero or negative value still
// reaches it.
type CreateBookingRequest struct {
	RoomID int64 `json:"roomId"`
}

type UpdateBookingRequest struct {
	RoomID int64 `json:"roomId"`
}

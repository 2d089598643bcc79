package queries

import "context"

// RoomSummary is a directory row for browsing bookable rooms.
type RoomSummary struct {
	ID       int64  `json:"id"`
	HotelID  int64  `json:"hotelId"`
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
	Occupied int64  `json:"occupied"`
}

type RoomReadStore interface {
	ListRooms(ctx context.Context) ([]RoomSummary, error)
}

type RoomQueries interface {
	List(ctx context.Context) ([]RoomSummary, error)
}

type roomQueries struct {
	store RoomReadStore
}

func NewRoomQueries(store RoomReadStore) RoomQueries {
	return &roomQueries{store: store}
}

func (q *roomQueries) List(ctx context.Context) ([]RoomSummary, error) {
	return q.store.ListRooms(ctx)
}

package response

import "roomdesk/internal/usecase/queries"

type RoomResponse struct {
	ID       int64  `json:"id"`
	HotelID  int64  `json:"hotelId"`
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
}

type BookingResponse struct {
	ID   int64        `json:"id"`
	Room RoomResponse `json:"room"`
}

type BookingIDResponse struct {
	BookingID int64 `json:"bookingId"`
}

func FromBookingView(v *queries.BookingView) BookingResponse {
	return BookingResponse{
		ID: v.ID,
		Room: RoomResponse{
			ID:       v.Room.ID,
			HotelID:  v.Room.HotelID,
			Name:     v.Room.Name,
			Capacity: v.Room.Capacity,
		},
	}
}

package response

import "roomdesk/internal/usecase/queries"

type RoomSummaryResponse struct {
	ID       int64  `json:"id"`
	HotelID  int64  `json:"hotelId"`
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
	Occupied int64  `json:"occupied"`
}

type RoomListResponse struct {
	Rooms []RoomSummaryResponse `json:"rooms"`
}

func FromRoomSummaries(summaries []queries.RoomSummary) RoomListResponse {
	rooms := make([]RoomSummaryResponse, len(summaries))
	for i, s := range summaries {
		rooms[i] = RoomSummaryResponse{
			ID:       s.ID,
			HotelID:  s.HotelID,
			Name:     s.Name,
			Capacity: s.Capacity,
			Occupied: s.Occupied,
		}
	}
	return RoomListResponse{Rooms: rooms}
}

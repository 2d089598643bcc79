package readstore

import (
	"context"
	"errors"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/infra/db"
	"roomdesk/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type RoomReadStore struct {
	db db.DBTX
}

func NewRoomReadStore(dbtx db.DBTX) *RoomReadStore {
	return &RoomReadStore{db: dbtx}
}

func (r *RoomReadStore) FindByID(ctx context.Context, roomID int64) (*booking.Room, error) {
	const query = `
		SELECT id, hotel_id, name, capacity
		FROM rooms
		WHERE id = $1`

	var room booking.Room
	err := r.db.QueryRow(ctx, query, roomID).Scan(&room.ID, &room.HotelID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("room not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find room by ID", err)
	}
	return &room, nil
}

func (r *RoomReadStore) ListRooms(ctx context.Context) ([]queries.RoomSummary, error) {
	const query = `
		SELECT r.id, r.hotel_id, r.name, r.capacity, COUNT(b.id) AS occupied
		FROM rooms r
		LEFT JOIN bookings b ON b.room_id = r.id
		GROUP BY r.id, r.hotel_id, r.name, r.capacity
		ORDER BY r.hotel_id, r.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list rooms", err)
	}
	defer rows.Close()

	var result []queries.RoomSummary
	for rows.Next() {
		var s queries.RoomSummary
		if err := rows.Scan(&s.ID, &s.HotelID, &s.Name, &s.Capacity, &s.Occupied); err != nil {
			return nil, infra.WrapRepoErr("failed to scan room row", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate room rows", err)
	}
	return result, nil
}

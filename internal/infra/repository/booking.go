package repository

import (
	"context"
	"errors"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

// RoomForUpdate locks the room row for the rest of the transaction. Capacity
// checks against a room loaded here cannot be invalidated by a concurrent
// insert into the same room.
func (r *BookingRepository) RoomForUpdate(ctx context.Context, roomID int64) (*booking.Room, error) {
	const query = `
		SELECT id, hotel_id, name, capacity
		FROM rooms
		WHERE id = $1
		FOR UPDATE`

	var room booking.Room
	err := r.db.QueryRow(ctx, query, roomID).Scan(&room.ID, &room.HotelID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("room not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock room", err)
	}
	return &room, nil
}

func (r *BookingRepository) Create(ctx context.Context, userID, roomID int64) (int64, error) {
	const query = `
		INSERT INTO bookings (user_id, room_id)
		VALUES ($1, $2)
		RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, userID, roomID).Scan(&id); err != nil {
		return 0, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}

func (r *BookingRepository) UpdateRoom(ctx context.Context, bookingID, roomID int64) error {
	const query = `
		UPDATE bookings
		SET room_id = $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, bookingID, roomID)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking room", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

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

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, bookingID int64) (*booking.Booking, error) {
	const query = `
		SELECT id, user_id, room_id, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	return r.scanBooking(ctx, query, bookingID)
}

func (r *BookingReadStore) FindByUserID(ctx context.Context, userID int64) (*booking.Booking, error) {
	const query = `
		SELECT id, user_id, room_id, created_at, updated_at
		FROM bookings
		WHERE user_id = $1`

	return r.scanBooking(ctx, query, userID)
}

func (r *BookingReadStore) scanBooking(ctx context.Context, query string, arg int64) (*booking.Booking, error) {
	var b booking.Booking
	err := r.db.QueryRow(ctx, query, arg).Scan(&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	return &b, nil
}

func (r *BookingReadStore) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE room_id = $1`

	var n int64
	if err := r.db.QueryRow(ctx, query, roomID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count bookings by room", err)
	}
	return n, nil
}

// BookingWithRoomByUserID also satisfies the query-side read store contract.
func (r *BookingReadStore) BookingWithRoomByUserID(ctx context.Context, userID int64) (*queries.BookingView, error) {
	const query = `
		SELECT b.id, r.id, r.hotel_id, r.name, r.capacity
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.user_id = $1`

	var v queries.BookingView
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&v.ID, &v.Room.ID, &v.Room.HotelID, &v.Room.Name, &v.Room.Capacity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking with room by user ID", err)
	}
	return &v, nil
}

package queries

import (
	"context"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/usecase/shared"
)

// BookingView is the read model returned to the caller: the booking id plus
// the room it points at.
type BookingView struct {
	ID   int64    `json:"id"`
	Room RoomView `json:"room"`
}

type RoomView struct {
	ID       int64  `json:"id"`
	HotelID  int64  `json:"hotelId"`
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
}

type BookingReadStore interface {
	BookingWithRoomByUserID(ctx context.Context, userID int64) (*BookingView, error)
}

type BookingQueries interface {
	GetOwn(ctx context.Context, userID int64) (*BookingView, error)
}

type bookingQueries struct {
	uow   shared.UnitOfWork
	store BookingReadStore
}

func NewBookingQueries(uow shared.UnitOfWork, store BookingReadStore) BookingQueries {
	return &bookingQueries{uow: uow, store: store}
}

// GetOwn returns the caller's current booking. Ineligible users are denied
// before the store is consulted, so they cannot learn whether a booking
// exists.
func (q *bookingQueries) GetOwn(ctx context.Context, userID int64) (*BookingView, error) {
	allowed, err := shared.UserAllowed(ctx, q.uow.CommandReads(), userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, booking.ErrNotEligible
	}

	view, err := q.store.BookingWithRoomByUserID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	return view, nil
}

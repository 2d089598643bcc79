package commands

import (
	"context"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/usecase/shared"
)

type BookingCommands interface {
	Create(ctx context.Context, userID, roomID int64) (int64, error)
	ChangeRoom(ctx context.Context, userID, bookingID, roomID int64) (int64, error)
}

type bookingCommands struct {
	uow shared.UnitOfWork
}

func NewBookingCommands(uow shared.UnitOfWork) BookingCommands {
	return &bookingCommands{uow: uow}
}

// Create books a room for the user. The checks run in a fixed order and the
// first failing one wins; capacity is checked under the room's row lock so a
// concurrent create cannot land both writers in the last bed.
func (c *bookingCommands) Create(ctx context.Context, userID, roomID int64) (int64, error) {
	if !booking.ValidID(roomID) {
		return 0, booking.ErrInvalidID
	}

	var bookingID int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()

		allowed, err := shared.UserAllowed(ctx, reads, userID)
		if err != nil {
			return err
		}
		if !allowed {
			return booking.ErrNotEligible
		}

		if _, err := reads.BookingByUserID(ctx, userID); err == nil {
			return booking.ErrAlreadyBooked
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}

		room, err := tx.Bookings().RoomForUpdate(ctx, roomID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return booking.ErrRoomNotFound
			}
			return err
		}

		full, err := shared.RoomFull(ctx, reads, room)
		if err != nil {
			return err
		}
		if full {
			return booking.ErrRoomFull
		}

		bookingID, err = tx.Bookings().Create(ctx, userID, roomID)
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Lost a race against the user's own concurrent create.
			return booking.ErrAlreadyBooked
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return bookingID, nil
}

// ChangeRoom moves an existing booking to another room. Ownership is decided
// after existence, so probing a foreign booking id reveals that it exists but
// nothing more.
func (c *bookingCommands) ChangeRoom(ctx context.Context, userID, bookingID, roomID int64) (int64, error) {
	if !booking.ValidID(bookingID) || !booking.ValidID(roomID) {
		return 0, booking.ErrInvalidID
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()

		allowed, err := shared.UserAllowed(ctx, reads, userID)
		if err != nil {
			return err
		}
		if !allowed {
			return booking.ErrNotEligible
		}

		room, err := tx.Bookings().RoomForUpdate(ctx, roomID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return booking.ErrRoomNotFound
			}
			return err
		}

		if _, err := reads.BookingByID(ctx, bookingID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return booking.ErrBookingNotFound
			}
			return err
		}

		// Ownership is proven through the user's own booking, not by
		// trusting the id from the request path.
		own, err := reads.BookingByUserID(ctx, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return booking.ErrNotBookingOwner
			}
			return err
		}
		if own.ID != bookingID {
			return booking.ErrNotBookingOwner
		}
		if own.RoomID == roomID {
			return booking.ErrSameRoom
		}

		full, err := shared.RoomFull(ctx, reads, room)
		if err != nil {
			return err
		}
		if full {
			return booking.ErrRoomFull
		}

		return tx.Bookings().UpdateRoom(ctx, bookingID, roomID)
	})
	if err != nil {
		return 0, err
	}
	return bookingID, nil
}

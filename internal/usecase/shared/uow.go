package shared

import (
	"context"

	"roomdesk/internal/domain/booking"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry on
	// serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads outside a transaction
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Reads() CommandReads
}

// CommandReads are the write-side lookups the rule engine consumes. Absence is
// reported as a NOT_FOUND repository error, never as a nil result.
type CommandReads interface {
	EnrollmentByUserID(ctx context.Context, userID int64) (*booking.Enrollment, error)
	TicketByEnrollmentID(ctx context.Context, enrollmentID int64) (*booking.Ticket, error)
	RoomByID(ctx context.Context, roomID int64) (*booking.Room, error)
	BookingByID(ctx context.Context, bookingID int64) (*booking.Booking, error)
	BookingByUserID(ctx context.Context, userID int64) (*booking.Booking, error)
	CountBookingsByRoom(ctx context.Context, roomID int64) (int64, error)
}

type BookingRepository interface {
	// RoomForUpdate loads the room under a row-level lock. Every capacity
	// check must go through it so "count occupants, then write" is serialized
	// per room for the rest of the transaction.
	RoomForUpdate(ctx context.Context, roomID int64) (*booking.Room, error)
	Create(ctx context.Context, userID, roomID int64) (int64, error)
	UpdateRoom(ctx context.Context, bookingID, roomID int64) error
}

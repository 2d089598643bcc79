package booking

import "time"

// TicketStatus mirrors the payment lifecycle owned by the registration flow.
// Only PAID tickets can hold a hotel booking.
type TicketStatus string

const (
	TicketStatusReserved  TicketStatus = "RESERVED"
	TicketStatusPaid      TicketStatus = "PAID"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// Enrollment is the attendee's event registration. Read-only here; the
// registration flow creates and destroys it.
type Enrollment struct {
	ID      int64
	UserID  int64
	Address string
}

// Ticket is the purchased ticket tied to an enrollment, with its type's
// capability flags denormalized onto it.
type Ticket struct {
	ID            int64
	EnrollmentID  int64
	Status        TicketStatus
	IsRemote      bool
	IncludesHotel bool
}

// Room is a hotel room with a fixed occupancy limit. Read-only here.
type Room struct {
	ID       int64
	HotelID  int64
	Name     string
	Capacity int32
}

// Booking is a standing assignment of one attendee to one room. It has no
// date range; it lasts until moved. This core never deletes one.
type Booking struct {
	ID        int64
	UserID    int64
	RoomID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

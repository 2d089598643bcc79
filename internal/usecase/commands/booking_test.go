//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/usecase/commands"
	"roomdesk/internal/usecase/shared"
)

// memStore backs both the reads and the writes so a test can assert on the
// post-state directly.
type memStore struct {
	enrollments map[int64]*booking.Enrollment // keyed by user id
	tickets     map[int64]*booking.Ticket     // keyed by enrollment id
	rooms       map[int64]*booking.Room
	bookings    map[int64]*booking.Booking
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		enrollments: map[int64]*booking.Enrollment{},
		tickets:     map[int64]*booking.Ticket{},
		rooms:       map[int64]*booking.Room{},
		bookings:    map[int64]*booking.Booking{},
		nextID:      1,
	}
}

func notFound() error {
	return infra.WrapRepoErr("no rows", nil, infra.KindNotFound)
}

func (s *memStore) EnrollmentByUserID(_ context.Context, userID int64) (*booking.Enrollment, error) {
	if e, ok := s.enrollments[userID]; ok {
		return e, nil
	}
	return nil, notFound()
}

func (s *memStore) TicketByEnrollmentID(_ context.Context, enrollmentID int64) (*booking.Ticket, error) {
	if t, ok := s.tickets[enrollmentID]; ok {
		return t, nil
	}
	return nil, notFound()
}

func (s *memStore) RoomByID(_ context.Context, roomID int64) (*booking.Room, error) {
	if r, ok := s.rooms[roomID]; ok {
		return r, nil
	}
	return nil, notFound()
}

func (s *memStore) BookingByID(_ context.Context, bookingID int64) (*booking.Booking, error) {
	if b, ok := s.bookings[bookingID]; ok {
		return b, nil
	}
	return nil, notFound()
}

func (s *memStore) BookingByUserID(_ context.Context, userID int64) (*booking.Booking, error) {
	for _, b := range s.bookings {
		if b.UserID == userID {
			return b, nil
		}
	}
	return nil, notFound()
}

func (s *memStore) CountBookingsByRoom(_ context.Context, roomID int64) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) RoomForUpdate(ctx context.Context, roomID int64) (*booking.Room, error) {
	return s.RoomByID(ctx, roomID)
}

func (s *memStore) Create(_ context.Context, userID, roomID int64) (int64, error) {
	for _, b := range s.bookings {
		if b.UserID == userID {
			return 0, infra.WrapRepoErr("duplicate booking", nil, infra.KindDuplicateKey)
		}
	}
	id := s.nextID
	s.nextID++
	s.bookings[id] = &booking.Booking{ID: id, UserID: userID, RoomID: roomID}
	return id, nil
}

func (s *memStore) UpdateRoom(_ context.Context, bookingID, roomID int64) error {
	b, ok := s.bookings[bookingID]
	if !ok {
		return notFound()
	}
	b.RoomID = roomID
	return nil
}

type memUoW struct{ store *memStore }

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u)
}

func (u *memUoW) CommandReads() shared.CommandReads  { return u.store }
func (u *memUoW) Bookings() shared.BookingRepository { return u.store }
func (u *memUoW) Reads() shared.CommandReads         { return u.store }

// seedEligibleUser wires an enrollment and a paid in-person hotel ticket.
func seedEligibleUser(s *memStore, userID int64) {
	enrollmentID := userID * 100
	s.enrollments[userID] = &booking.Enrollment{ID: enrollmentID, UserID: userID, Address: "Main St 1"}
	s.tickets[enrollmentID] = &booking.Ticket{
		ID:            enrollmentID + 1,
		EnrollmentID:  enrollmentID,
		Status:        booking.TicketStatusPaid,
		IncludesHotel: true,
	}
}

func seedRoom(s *memStore, roomID int64, capacity int32) {
	s.rooms[roomID] = &booking.Room{ID: roomID, HotelID: 1, Name: "room", Capacity: capacity}
}

func fillRoom(s *memStore, roomID int64, occupants int) {
	for i := 0; i < occupants; i++ {
		id := s.nextID
		s.nextID++
		s.bookings[id] = &booking.Booking{ID: id, UserID: 9000 + id, RoomID: roomID}
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("books a free room", func(t *testing.T) {
		store := newMemStore()
		seedEligibleUser(store, 1)
		seedRoom(store, 5, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		id, err := uc.Create(ctx, 1, 5)
		require.NoError(t, err)
		require.NotZero(t, id)

		got := store.bookings[id]
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.UserID)
		assert.Equal(t, int64(5), got.RoomID)
	})

	t.Run("rejects non-positive room id before anything else", func(t *testing.T) {
		store := newMemStore()
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 0)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
		assert.Empty(t, store.bookings)
	})

	t.Run("rejects ineligible user regardless of room", func(t *testing.T) {
		store := newMemStore()
		seedRoom(store, 5, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 5)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
	})

	t.Run("rejects remote ticket holder", func(t *testing.T) {
		store := newMemStore()
		seedEligibleUser(store, 1)
		store.tickets[100].IsRemote = true
		seedRoom(store, 5, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 5)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
	})

	t.Run("rejects second booking for the same user", func(t *testing.T) {
		store := newMemStore()
		seedEligibleUser(store, 1)
		seedRoom(store, 5, 2)
		seedRoom(store, 6, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 5)
		require.NoError(t, err)

		_, err = uc.Create(ctx, 1, 6)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
		assert.Len(t, store.bookings, 1)
	})

	t.Run("missing room is not found, not denied", func(t *testing.T) {
		store := newMemStore()
		seedEligibleUser(store, 1)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 42)
		assert.ErrorIs(t, err, booking.ErrNotFound)
		assert.NotErrorIs(t, err, booking.ErrBookingDenied)
	})

	t.Run("rejects a full room without inserting", func(t *testing.T) {
		store := newMemStore()
		seedEligibleUser(store, 1)
		seedRoom(store, 5, 2)
		fillRoom(store, 5, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})

		_, err := uc.Create(ctx, 1, 5)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)

		n, _ := store.CountBookingsByRoom(ctx, 5)
		assert.Equal(t, int64(2), n)
	})
}

func TestChangeRoom(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memStore, commands.BookingCommands, int64) {
		t.Helper()
		store := newMemStore()
		seedEligibleUser(store, 1)
		seedRoom(store, 5, 2)
		seedRoom(store, 6, 2)
		uc := commands.NewBookingCommands(&memUoW{store: store})
		id, err := uc.Create(ctx, 1, 5)
		require.NoError(t, err)
		return store, uc, id
	}

	t.Run("moves booking to another room keeping its id", func(t *testing.T) {
		store, uc, bookingID := setup(t)

		id, err := uc.ChangeRoom(ctx, 1, bookingID, 6)
		require.NoError(t, err)
		assert.Equal(t, bookingID, id)
		assert.Equal(t, int64(6), store.bookings[bookingID].RoomID)
	})

	t.Run("rejects non-positive ids", func(t *testing.T) {
		_, uc, bookingID := setup(t)

		_, err := uc.ChangeRoom(ctx, 1, bookingID, -1)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)

		_, err = uc.ChangeRoom(ctx, 1, 0, 6)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
	})

	t.Run("missing room or booking is not found", func(t *testing.T) {
		_, uc, bookingID := setup(t)

		_, err := uc.ChangeRoom(ctx, 1, bookingID, 99)
		assert.ErrorIs(t, err, booking.ErrNotFound)

		_, err = uc.ChangeRoom(ctx, 1, 99, 6)
		assert.ErrorIs(t, err, booking.ErrNotFound)
	})

	t.Run("rejects moving someone else's booking", func(t *testing.T) {
		store, uc, _ := setup(t)
		seedEligibleUser(store, 2)
		otherID, err := uc.Create(ctx, 2, 6)
		require.NoError(t, err)

		_, err = uc.ChangeRoom(ctx, 1, otherID, 6)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
		assert.Equal(t, int64(2), store.bookings[otherID].UserID)
	})

	t.Run("rejects moving to the current room", func(t *testing.T) {
		store, uc, bookingID := setup(t)

		_, err := uc.ChangeRoom(ctx, 1, bookingID, 5)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
		assert.Equal(t, int64(5), store.bookings[bookingID].RoomID)
	})

	t.Run("rejects moving into a full room", func(t *testing.T) {
		store, uc, bookingID := setup(t)
		fillRoom(store, 6, 2)

		_, err := uc.ChangeRoom(ctx, 1, bookingID, 6)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
		assert.Equal(t, int64(5), store.bookings[bookingID].RoomID)
	})

	t.Run("rejects ineligible user before touching stores", func(t *testing.T) {
		_, uc, bookingID := setup(t)
		ineligible := int64(7)

		_, err := uc.ChangeRoom(ctx, ineligible, bookingID, 6)
		assert.ErrorIs(t, err, booking.ErrBookingDenied)
	})
}

//go:build e2e

package booking_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"roomdesk/internal/handler/dto/response"
	"roomdesk/tests/common/builder"
	"roomdesk/tests/common/dbtest"
	"roomdesk/tests/common/httptest"
	"roomdesk/tests/e2e"
	"roomdesk/tests/e2e/common/helper"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const bookingURL = "/api/booking"

type BookingSuite struct {
	e2e.SharedSuite
}

func (s *BookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) token(userID int64, email string) string {
	return helper.NewJWTTestHelper(s.Config.JWT).GenerateToken(s.T(), userID, email)
}

func (s *BookingSuite) countBookings(roomID int64) int64 {
	var n int64
	err := s.DB.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM bookings WHERE room_id = $1", roomID).Scan(&n)
	require.NoError(s.T(), err)
	return n
}

// =============================================================================
// TestGetBooking
// =============================================================================

func (s *BookingSuite) TestGetBooking() {
	s.Run("returns the attendee's booking with its room", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomID := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		bookingID := dbtest.CreateBooking(t, s.DB, attendee.UserID, roomID)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingURL, nil,
			s.token(attendee.UserID, attendee.Email))

		var got response.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)

		want := response.BookingResponse{
			ID: bookingID,
			Room: response.RoomResponse{
				ID:       roomID,
				HotelID:  hotelID,
				Name:     "101",
				Capacity: 2,
			},
		}
		require.Empty(t, cmp.Diff(want, got))
	})

	s.Run("denies a user without enrollment", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().WithoutEnrollment().Create(t, s.DB)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingURL, nil,
			s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
	})

	s.Run("404 for an eligible attendee with no booking", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingURL, nil,
			s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Not found")
	})

	s.Run("401 without a token", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("401 with an expired token", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		expired := helper.NewJWTTestHelper(s.Config.JWT).CreateExpiredToken(t, attendee.UserID, attendee.Email)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingURL, nil, expired)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// TestCreateBooking
// =============================================================================

func (s *BookingSuite) TestCreateBooking() {
	s.Run("books a free room and persists exactly one row", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomID := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
			map[string]any{"roomId": roomID}, s.token(attendee.UserID, attendee.Email))

		var got response.BookingIDResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.NotZero(t, got.BookingID)

		var userID, storedRoom int64
		err := s.DB.QueryRow(context.Background(),
			"SELECT user_id, room_id FROM bookings WHERE id = $1", got.BookingID).
			Scan(&userID, &storedRoom)
		require.NoError(t, err)
		require.Equal(t, attendee.UserID, userID)
		require.Equal(t, roomID, storedRoom)
		require.Equal(t, int64(1), s.countBookings(roomID))
	})

	s.Run("denies booking a full room without inserting", func() {
		t := s.T()

		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomID := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		for i := 0; i < 2; i++ {
			other := builder.NewAttendeeBuilder().Create(t, s.DB)
			dbtest.CreateBooking(t, s.DB, other.UserID, roomID)
		}

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
			map[string]any{"roomId": roomID}, s.token(attendee.UserID, attendee.Email))

		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
		require.Equal(t, int64(2), s.countBookings(roomID))
	})

	s.Run("denies a zero room id", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
			map[string]any{"roomId": 0}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
	})

	s.Run("denies remote and unpaid ticket holders", func() {
		t := s.T()

		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomID := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)

		remote := builder.NewAttendeeBuilder().Remote().Create(t, s.DB)
		unpaid := builder.NewAttendeeBuilder().Unpaid().Create(t, s.DB)

		for _, a := range []builder.Attendee{remote, unpaid} {
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
				map[string]any{"roomId": roomID}, s.token(a.UserID, a.Email))
			httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
		}
		require.Equal(t, int64(0), s.countBookings(roomID))
	})

	s.Run("denies a second booking for the same attendee", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		roomB := dbtest.CreateRoom(t, s.DB, hotelID, "102", 2)
		dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
			map[string]any{"roomId": roomB}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
		require.Equal(t, int64(0), s.countBookings(roomB))
	})

	s.Run("404 for a room that does not exist", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
			map[string]any{"roomId": 99999}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Not found")
	})

	s.Run("concurrent creates never overbook the last bed", func() {
		t := s.T()

		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomID := dbtest.CreateRoom(t, s.DB, hotelID, "101", 1)

		const writers = 8
		tokens := make([]string, writers)
		for i := range tokens {
			a := builder.NewAttendeeBuilder().Create(t, s.DB)
			tokens[i] = s.token(a.UserID, a.Email)
		}

		var wg sync.WaitGroup
		statuses := make([]int, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingURL,
					map[string]any{"roomId": roomID}, tokens[i])
				statuses[i] = w.Code
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, code := range statuses {
			if code == http.StatusOK {
				succeeded++
			}
		}
		require.Equal(t, 1, succeeded, "exactly one writer may take the last bed: %v", statuses)
		require.Equal(t, int64(1), s.countBookings(roomID))
	})
}

// =============================================================================
// TestUpdateBooking
// =============================================================================

func (s *BookingSuite) TestUpdateBooking() {
	s.Run("moves the booking keeping its id", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		roomB := dbtest.CreateRoom(t, s.DB, hotelID, "102", 2)
		bookingID := dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		url := fmt.Sprintf("%s/%d", bookingURL, bookingID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, url,
			map[string]any{"roomId": roomB}, s.token(attendee.UserID, attendee.Email))

		var got response.BookingIDResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Equal(t, bookingID, got.BookingID)

		var storedRoom int64
		err := s.DB.QueryRow(context.Background(),
			"SELECT room_id FROM bookings WHERE id = $1", bookingID).Scan(&storedRoom)
		require.NoError(t, err)
		require.Equal(t, roomB, storedRoom)
	})

	s.Run("denies moving another attendee's booking", func() {
		t := s.T()

		owner := builder.NewAttendeeBuilder().Create(t, s.DB)
		intruder := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		roomB := dbtest.CreateRoom(t, s.DB, hotelID, "102", 2)
		bookingID := dbtest.CreateBooking(t, s.DB, owner.UserID, roomA)

		url := fmt.Sprintf("%s/%d", bookingURL, bookingID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, url,
			map[string]any{"roomId": roomB}, s.token(intruder.UserID, intruder.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")

		var storedRoom int64
		err := s.DB.QueryRow(context.Background(),
			"SELECT room_id FROM bookings WHERE id = $1", bookingID).Scan(&storedRoom)
		require.NoError(t, err)
		require.Equal(t, roomA, storedRoom)
	})

	s.Run("denies a move to the current room", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		bookingID := dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		url := fmt.Sprintf("%s/%d", bookingURL, bookingID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, url,
			map[string]any{"roomId": roomA}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
	})

	s.Run("denies a move into a full room", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		roomB := dbtest.CreateRoom(t, s.DB, hotelID, "102", 1)
		bookingID := dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		occupant := builder.NewAttendeeBuilder().Create(t, s.DB)
		dbtest.CreateBooking(t, s.DB, occupant.UserID, roomB)

		url := fmt.Sprintf("%s/%d", bookingURL, bookingID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, url,
			map[string]any{"roomId": roomB}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Booking denied")
		require.Equal(t, int64(1), s.countBookings(roomB))
	})

	s.Run("404 when booking or room is missing", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		bookingID := dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		w := httptest.PerformRequest(t, s.Router, http.MethodPut,
			fmt.Sprintf("%s/%d", bookingURL, bookingID),
			map[string]any{"roomId": 99999}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Not found")

		w = httptest.PerformRequest(t, s.Router, http.MethodPut,
			fmt.Sprintf("%s/%d", bookingURL, int64(99999)),
			map[string]any{"roomId": roomA}, s.token(attendee.UserID, attendee.Email))
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Not found")
	})
}

// =============================================================================
// TestListRooms
// =============================================================================

func (s *BookingSuite) TestListRooms() {
	s.Run("lists rooms with occupancy", func() {
		t := s.T()

		attendee := builder.NewAttendeeBuilder().Create(t, s.DB)
		hotelID := dbtest.CreateHotel(t, s.DB, "Grand Hotel")
		roomA := dbtest.CreateRoom(t, s.DB, hotelID, "101", 2)
		dbtest.CreateRoom(t, s.DB, hotelID, "102", 3)
		dbtest.CreateBooking(t, s.DB, attendee.UserID, roomA)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/rooms", nil,
			s.token(attendee.UserID, attendee.Email))

		var got response.RoomListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Len(t, got.Rooms, 2)
		require.Equal(t, int64(1), got.Rooms[0].Occupied)
		require.Equal(t, int64(0), got.Rooms[1].Occupied)
	})
}

package shared

import (
	"context"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/pkg/errs"
)

// RoomFull reports whether the room has no free beds left. Callers that are
// about to write must pass a room loaded through RoomForUpdate so the count
// stays valid until commit.
func RoomFull(ctx context.Context, reads CommandReads, room *booking.Room) (bool, error) {
	occupied, err := reads.CountBookingsByRoom(ctx, room.ID)
	if err != nil {
		return false, errs.Wrap(err, "failed to count room occupants")
	}
	return room.IsFull(occupied), nil
}

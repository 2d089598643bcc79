package shared

import (
	"context"

	"roomdesk/internal/infra"
	"roomdesk/internal/pkg/errs"
)

// UserAllowed reports whether the user may work with hotel bookings at all.
// A user qualifies when their enrollment carries an in-person, hotel-inclusive
// ticket that has been paid. A missing enrollment or ticket folds into false
// rather than an error; only store failures propagate.
func UserAllowed(ctx context.Context, reads CommandReads, userID int64) (bool, error) {
	enrollment, err := reads.EnrollmentByUserID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, errs.Wrap(err, "failed to load enrollment")
	}

	ticket, err := reads.TicketByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, errs.Wrap(err, "failed to load ticket")
	}

	return ticket.GrantsHotelAccess(), nil
}

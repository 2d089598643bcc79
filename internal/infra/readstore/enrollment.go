package readstore

import (
	"context"
	"errors"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra"
	"roomdesk/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

type EnrollmentReadStore struct {
	db db.DBTX
}

func NewEnrollmentReadStore(dbtx db.DBTX) *EnrollmentReadStore {
	return &EnrollmentReadStore{db: dbtx}
}

func (r *EnrollmentReadStore) FindByUserID(ctx context.Context, userID int64) (*booking.Enrollment, error) {
	const query = `
		SELECT id, user_id, address
		FROM enrollments
		WHERE user_id = $1`

	var e booking.Enrollment
	err := r.db.QueryRow(ctx, query, userID).Scan(&e.ID, &e.UserID, &e.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("enrollment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find enrollment by user ID", err)
	}
	return &e, nil
}

// FindTicketByEnrollmentID flattens the ticket type's capability flags into
// the ticket so rule code never sees the type row.
func (r *EnrollmentReadStore) FindTicketByEnrollmentID(ctx context.Context, enrollmentID int64) (*booking.Ticket, error) {
	const query = `
		SELECT t.id, t.enrollment_id, t.status, tt.is_remote, tt.includes_hotel
		FROM tickets t
		JOIN ticket_types tt ON tt.id = t.ticket_type_id
		WHERE t.enrollment_id = $1`

	var t booking.Ticket
	err := r.db.QueryRow(ctx, query, enrollmentID).Scan(
		&t.ID, &t.EnrollmentID, &t.Status, &t.IsRemote, &t.IncludesHotel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket by enrollment ID", err)
	}
	return &t, nil
}

//go:build unit || e2e

package builder

import (
	"fmt"
	"sync/atomic"
	"testing"

	"roomdesk/tests/common/dbtest"
)

var attendeeSeq atomic.Int64

// Attendee is a seeded user with an enrollment and ticket.
type Attendee struct {
	UserID       int64
	EnrollmentID int64
	TicketID     int64
	Email        string
}

type AttendeeBuilder struct {
	email      string
	address    string
	ticketType string
	status     string
	noTicket   bool
	noEnroll   bool
}

// NewAttendeeBuilder defaults to a fully eligible attendee: enrolled, with a
// paid in-person ticket that includes a hotel stay.
func NewAttendeeBuilder() *AttendeeBuilder {
	n := attendeeSeq.Add(1)
	return &AttendeeBuilder{
		email:      fmt.Sprintf("attendee%d@example.com", n),
		address:    "1 Conference Way",
		ticketType: "in-person-hotel",
		status:     "PAID",
	}
}

func (b *AttendeeBuilder) WithEmail(email string) *AttendeeBuilder {
	b.email = email
	return b
}

func (b *AttendeeBuilder) WithTicketType(name string) *AttendeeBuilder {
	b.ticketType = name
	return b
}

func (b *AttendeeBuilder) WithStatus(status string) *AttendeeBuilder {
	b.status = status
	return b
}

func (b *AttendeeBuilder) Remote() *AttendeeBuilder {
	b.ticketType = "remote"
	return b
}

func (b *AttendeeBuilder) Unpaid() *AttendeeBuilder {
	b.status = "RESERVED"
	return b
}

func (b *AttendeeBuilder) WithoutTicket() *AttendeeBuilder {
	b.noTicket = true
	return b
}

func (b *AttendeeBuilder) WithoutEnrollment() *AttendeeBuilder {
	b.noEnroll = true
	return b
}

func (b *AttendeeBuilder) Create(t *testing.T, db dbtest.DBLike) Attendee {
	t.Helper()

	a := Attendee{Email: b.email}
	a.UserID = dbtest.CreateTestUser(t, db, b.email)
	if b.noEnroll {
		return a
	}
	a.EnrollmentID = dbtest.CreateEnrollment(t, db, a.UserID, b.address)
	if b.noTicket {
		return a
	}
	a.TicketID = dbtest.CreateTicket(t, db, a.EnrollmentID, b.ticketType, b.status)
	return a
}

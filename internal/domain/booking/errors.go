package booking

import "roomdesk/internal/pkg/errs"

// The outer surface only ever distinguishes two failure kinds: a denied
// request and a missing resource. The finer-grained sentinels below are
// marked with one of the two so handlers match on the kind while logs keep
// the concrete reason.
var (
	ErrBookingDenied = errs.New("booking denied")
	ErrNotFound      = errs.New("not found")

	ErrInvalidID       = errs.Mark(errs.New("identifier must be positive"), ErrBookingDenied)
	ErrNotEligible     = errs.Mark(errs.New("user not eligible for hotel booking"), ErrBookingDenied)
	ErrAlreadyBooked   = errs.Mark(errs.New("user already has a booking"), ErrBookingDenied)
	ErrNotBookingOwner = errs.Mark(errs.New("booking does not belong to user"), ErrBookingDenied)
	ErrSameRoom        = errs.Mark(errs.New("booking already points at this room"), ErrBookingDenied)
	ErrRoomFull        = errs.Mark(errs.New("room is at capacity"), ErrBookingDenied)

	ErrRoomNotFound    = errs.Mark(errs.New("room does not exist"), ErrNotFound)
	ErrBookingNotFound = errs.Mark(errs.New("booking does not exist"), ErrNotFound)
)

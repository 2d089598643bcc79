package booking

// GrantsHotelAccess reports whether this ticket qualifies its holder for a
// hotel booking: an on-site ticket whose type includes hotel accommodation,
// fully paid. A nil ticket never qualifies.
func (t *Ticket) GrantsHotelAccess() bool {
	if t == nil {
		return false
	}
	return !t.IsRemote && t.IncludesHotel && t.Status == TicketStatusPaid
}

// IsFull reports whether the room has no free slot left given the current
// occupant count. The comparison is >= rather than ==: if a race ever pushes a
// room over capacity, the room must keep reading as full.
func (r *Room) IsFull(occupied int64) bool {
	return occupied >= int64(r.Capacity)
}

// ValidID reports whether an externally supplied identifier can reference a
// row at all. Zero and negative ids are rejected before any store lookup.
func ValidID(id int64) bool {
	return id >= 1
}

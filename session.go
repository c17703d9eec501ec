package mesa

import "time"

// Session is the durable per-conversation record, keyed by a stable
// conversation identifier such as a phone number or account email.
type Session struct {
	ID string

	// Messages is append-only except during compaction pruning.
	Messages []Event

	// Summary is the rolling digest of elided history; empty until the
	// first compaction.
	Summary string

	// RestaurantContext is the caller-supplied business profile/menu/FAQ
	// blob, read-only during the session.
	RestaurantContext string

	// ReservationID is the identifier returned by the reservation store
	// once a booking is confirmed. Empty until then.
	ReservationID string

	// Booked is false until the store confirms creation.
	Booked bool

	// Fields holds the reservation attributes extracted so far.
	Fields Fields

	CreatedAt time.Time
	UpdatedAt time.Time
}

package mesa

import (
	"context"
	"time"
)

// ReservationStatus is the lifecycle state of a persisted reservation.
type ReservationStatus string

const (
	StatusReceived  ReservationStatus = "Recibida"
	StatusCancelled ReservationStatus = "Cancelada"
)

// Reservation is a persisted reservation record. ID is the external
// store's identifier and is what the controller copies into the session
// once creation is confirmed.
type Reservation struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	StartsAt  time.Time         `json:"starts_at"`
	PartySize int               `json:"party_size"`
	Status    ReservationStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
}

// ReservationRequest carries everything required to create a reservation.
// StartsAt is the absolute instant combined from the guest's date, time
// and the restaurant's timezone.
type ReservationRequest struct {
	Name      string
	Phone     string
	Email     string
	StartsAt  time.Time
	PartySize int
	Notes     string
}

// ReservationPatch carries optional updates to an existing reservation.
// Nil fields are left unchanged.
type ReservationPatch struct {
	Name      *string
	Phone     *string
	Email     *string
	StartsAt  *time.Time
	PartySize *int
	Notes     *string
}

// Empty reports whether the patch changes nothing.
func (p ReservationPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil &&
		p.StartsAt == nil && p.PartySize == nil && p.Notes == nil
}

// ReservationStore is the external tabular backend holding reservations.
// Implementations must be safe for concurrent use across sessions.
type ReservationStore interface {
	Create(ctx context.Context, req ReservationRequest) (*Reservation, error)
	Update(ctx context.Context, id string, patch ReservationPatch) (*Reservation, error)
	Cancel(ctx context.Context, id string, note string) (*Reservation, error)
}

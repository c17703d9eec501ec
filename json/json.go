// Package json serializes sessions and turn events with a versioned
// envelope and tagged event DTOs. The sqlite store uses the event codec
// and the HTTP API uses it for transcripts.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesabot/mesa"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version           int        `json:"version"`
	ID                string     `json:"id"`
	Summary           string     `json:"summary,omitempty"`
	RestaurantContext string     `json:"restaurant_context,omitempty"`
	ReservationID     string     `json:"reservation_id,omitempty"`
	Booked            bool       `json:"booked"`
	Fields            fieldsDTO  `json:"fields"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Messages          []eventDTO `json:"messages"`
}

type fieldsDTO struct {
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	PartySize       *int   `json:"party_size,omitempty"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// MarshalSession serializes a Session in v1 envelope format.
func MarshalSession(s *mesa.Session) ([]byte, error) {
	env := envelope{
		Version:           1,
		ID:                s.ID,
		Summary:           s.Summary,
		RestaurantContext: s.RestaurantContext,
		ReservationID:     s.ReservationID,
		Booked:            s.Booked,
		Fields:            fieldsDTO(s.Fields),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Messages:          make([]eventDTO, len(s.Messages)),
	}
	for i, ev := range s.Messages {
		dto, err := marshalEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	return json.Marshal(env)
}

// UnmarshalSession deserializes a Session from v1 envelope format.
func UnmarshalSession(data []byte) (*mesa.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	events, err := unmarshalEvents(env.Messages)
	if err != nil {
		return nil, err
	}
	return &mesa.Session{
		ID:                env.ID,
		Messages:          events,
		Summary:           env.Summary,
		RestaurantContext: env.RestaurantContext,
		ReservationID:     env.ReservationID,
		Booked:            env.Booked,
		Fields:            mesa.Fields(env.Fields),
		CreatedAt:         env.CreatedAt,
		UpdatedAt:         env.UpdatedAt,
	}, nil
}

// MarshalEvents serializes an event sequence as a JSON array of tagged DTOs.
func MarshalEvents(events []mesa.Event) ([]byte, error) {
	dtos := make([]eventDTO, len(events))
	for i, ev := range events {
		dto, err := marshalEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		dtos[i] = dto
	}
	return json.Marshal(dtos)
}

// UnmarshalEvents deserializes an event sequence.
func UnmarshalEvents(data []byte) ([]mesa.Event, error) {
	var dtos []eventDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	return unmarshalEvents(dtos)
}

func unmarshalEvents(dtos []eventDTO) ([]mesa.Event, error) {
	events := make([]mesa.Event, len(dtos))
	for i, dto := range dtos {
		ev, err := unmarshalEvent(dto)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events[i] = ev
	}
	return events, nil
}

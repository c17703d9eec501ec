package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesabot/mesa"
)

type createArgs struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
	Notes     string `json:"notes"`
}

// CreateTool returns the tool definition for create_reservation.
func CreateTool() mesa.Tool {
	return mesa.Tool{
		Name:        CreateReservationTool,
		Description: "Create a reservation once ALL required details are known: name, phone, email, party size, date and time. Notes are optional.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"description": "Full name of the guest"
				},
				"phone": {
					"type": "string",
					"description": "Phone number including country code, e.g. +525512345678"
				},
				"email": {
					"type": "string",
					"description": "Email address of the guest"
				},
				"date": {
					"type": "string",
					"description": "Reservation date in YYYY-MM-DD format"
				},
				"time": {
					"type": "string",
					"description": "Reservation time in HH:MM 24-hour format"
				},
				"party_size": {
					"type": "integer",
					"description": "Number of people"
				},
				"notes": {
					"type": "string",
					"description": "Optional special requests for the reservation"
				}
			},
			"required": ["name", "phone", "email", "date", "time", "party_size"]
		}`),
	}
}

func (e *Executor) executeCreate(ctx context.Context, args json.RawMessage) (*mesa.ToolResult, error) {
	var a createArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failureResult(fmt.Errorf("invalid arguments: %w", mesa.ErrValidation)), nil
	}

	startsAt, err := CombineDateTime(a.Date, a.Time, e.loc)
	if err != nil {
		return failureResult(err), nil
	}

	rec, err := e.store.Create(ctx, mesa.ReservationRequest{
		Name:      a.Name,
		Phone:     a.Phone,
		Email:     a.Email,
		StartsAt:  startsAt,
		PartySize: a.PartySize,
		Notes:     a.Notes,
	})
	if err != nil {
		e.logger.Warn().Err(err).Msg("reservation create failed")
		return failureResult(err), nil
	}
	return successResult(rec), nil
}

type updateArgs struct {
	ReservationID string  `json:"reservation_id"`
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	PartySize     *int    `json:"party_size"`
	Notes         *string `json:"notes"`
}

// UpdateTool returns the tool definition for update_reservation.
func UpdateTool() mesa.Tool {
	return mesa.Tool{
		Name:        UpdateReservationTool,
		Description: "Update an existing reservation by its ID. Only pass the fields that change. To move the reservation you MUST pass both date (YYYY-MM-DD) and time (HH:MM); either one alone is rejected.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"reservation_id": {
					"type": "string",
					"description": "Identifier of the reservation to update"
				},
				"name": {
					"type": "string",
					"description": "Updated guest name"
				},
				"phone": {
					"type": "string",
					"description": "Updated phone number including country code"
				},
				"email": {
					"type": "string",
					"description": "Updated email address"
				},
				"date": {
					"type": "string",
					"description": "Updated date in YYYY-MM-DD format; must be accompanied by time"
				},
				"time": {
					"type": "string",
					"description": "Updated time in HH:MM 24-hour format; must be accompanied by date"
				},
				"party_size": {
					"type": "integer",
					"description": "Updated number of people"
				},
				"notes": {
					"type": "string",
					"description": "Updated special requests"
				}
			},
			"required": ["reservation_id"]
		}`),
	}
}

func (e *Executor) executeUpdate(ctx context.Context, args json.RawMessage) (*mesa.ToolResult, error) {
	var a updateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failureResult(fmt.Errorf("invalid arguments: %w", mesa.ErrValidation)), nil
	}
	if a.ReservationID == "" {
		return failureResult(fmt.Errorf("reservation_id is required: %w", mesa.ErrValidation)), nil
	}

	patch := mesa.ReservationPatch{
		Name:      a.Name,
		Phone:     a.Phone,
		Email:     a.Email,
		PartySize: a.PartySize,
		Notes:     a.Notes,
	}

	// Recomputing the instant needs the full date+time pair. Either half
	// alone is rejected so an existing reservation never silently moves.
	switch {
	case a.Time != nil && a.Date == nil:
		return failureResult(fmt.Errorf("time requires date: %w", mesa.ErrValidation)), nil
	case a.Date != nil && a.Time == nil:
		return failureResult(fmt.Errorf("date requires time: %w", mesa.ErrValidation)), nil
	case a.Date != nil:
		startsAt, err := CombineDateTime(*a.Date, *a.Time, e.loc)
		if err != nil {
			return failureResult(err), nil
		}
		patch.StartsAt = &startsAt
	}

	if patch.Empty() {
		return failureResult(fmt.Errorf("no fields to update: %w", mesa.ErrValidation)), nil
	}

	rec, err := e.store.Update(ctx, a.ReservationID, patch)
	if err != nil {
		e.logger.Warn().Err(err).Str("reservation_id", a.ReservationID).Msg("reservation update failed")
		return failureResult(err), nil
	}
	return successResult(rec), nil
}

type cancelArgs struct {
	ReservationID string `json:"reservation_id"`
	Notes         string `json:"notes"`
}

// CancelTool returns the tool definition for cancel_reservation.
func CancelTool() mesa.Tool {
	return mesa.Tool{
		Name:        CancelReservationTool,
		Description: "Cancel a reservation by its ID. Use ONLY when the guest explicitly asks to cancel. If the guest gave a reason, pass it in notes.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"reservation_id": {
					"type": "string",
					"description": "Identifier of the reservation to cancel"
				},
				"notes": {
					"type": "string",
					"description": "Optional cancellation reason given by the guest"
				}
			},
			"required": ["reservation_id"]
		}`),
	}
}

func (e *Executor) executeCancel(ctx context.Context, args json.RawMessage) (*mesa.ToolResult, error) {
	var a cancelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failureResult(fmt.Errorf("invalid arguments: %w", mesa.ErrValidation)), nil
	}
	if a.ReservationID == "" {
		return failureResult(fmt.Errorf("reservation_id is required: %w", mesa.ErrValidation)), nil
	}

	rec, err := e.store.Cancel(ctx, a.ReservationID, a.Notes)
	if err != nil {
		e.logger.Warn().Err(err).Str("reservation_id", a.ReservationID).Msg("reservation cancel failed")
		return failureResult(err), nil
	}
	return successResult(rec), nil
}

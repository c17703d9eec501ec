// Package tools implements the reservation tools the model can invoke and
// the executor that dispatches its tool calls.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesabot/mesa"
)

// Tool names as declared to the model.
const (
	CreateReservationTool = "create_reservation"
	UpdateReservationTool = "update_reservation"
	CancelReservationTool = "cancel_reservation"
	RememberFieldsTool    = "remember_fields"
)

// successResult wraps a reservation record in a {success:true, record} payload.
func successResult(rec *mesa.Reservation) *mesa.ToolResult {
	payload, _ := json.Marshal(map[string]any{
		"success": true,
		"record":  rec,
	})
	return &mesa.ToolResult{Payload: payload}
}

// failureResult wraps an error message in a {success:false, error} payload.
// Backend and validation failures both take this path so the model can
// react to them conversationally instead of the turn aborting.
func failureResult(err error) *mesa.ToolResult {
	payload, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	return &mesa.ToolResult{Payload: payload, IsError: true}
}

// CombineDateTime combines a YYYY-MM-DD date and an HH:MM 24-hour time in
// the given location into an absolute UTC instant. Time defaults to 00:00
// when empty. Date is required.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("date is required: %w", mesa.ErrValidation)
	}
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date/time %q %q: %w", date, clock, mesa.ErrValidation)
	}
	return t.UTC(), nil
}

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mesabot/mesa"
)

// RememberTool returns the tool definition for remember_fields. It has no
// side effect on any store: the extraction node binds it as a structured
// output channel and merges the echoed mapping into the session.
func RememberTool() mesa.Tool {
	return mesa.Tool{
		Name:        RememberFieldsTool,
		Description: "Record reservation details the guest mentioned. Pass null for anything not mentioned. Never invent values.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"description": "Full name of the guest, exactly as given"
				},
				"phone": {
					"type": "string",
					"description": "Phone number including country code"
				},
				"email": {
					"type": "string",
					"description": "Email address"
				},
				"party_size": {
					"type": "integer",
					"description": "Number of people; null if not mentioned"
				},
				"date": {
					"type": "string",
					"description": "Date in YYYY-MM-DD format, resolved from relative expressions like 'this Friday'"
				},
				"time": {
					"type": "string",
					"description": "Time in HH:MM 24-hour format; null unless an exact time was stated"
				},
				"special_requests": {
					"type": "string",
					"description": "Requests that concern the reservation itself, not conversation notes"
				}
			}
		}`),
	}
}

// ExecuteRememberFields normalizes the model's arguments into a
// FieldsPatch and echoes it back with explicit nulls for absent fields.
func ExecuteRememberFields(args json.RawMessage) (*mesa.ToolResult, error) {
	var patch mesa.FieldsPatch
	if err := json.Unmarshal(args, &patch); err != nil {
		return failureResult(fmt.Errorf("invalid arguments: %w", mesa.ErrValidation)), nil
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal fields patch: %w", err)
	}
	return &mesa.ToolResult{Payload: payload}, nil
}

// ParseRememberedFields decodes a remember_fields payload back into a
// FieldsPatch. The extraction node uses it to merge extracted values into
// the session.
func ParseRememberedFields(payload json.RawMessage) (mesa.FieldsPatch, error) {
	var patch mesa.FieldsPatch
	if err := json.Unmarshal(payload, &patch); err != nil {
		return mesa.FieldsPatch{}, fmt.Errorf("%w: %v", mesa.ErrToolPayload, err)
	}
	return patch, nil
}

package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesabot/mesa"
)

// eventDTO is the JSON representation of an Event with a type discriminator.
type eventDTO struct {
	Type       string           `json:"type"`
	Text       *string          `json:"text,omitempty"`
	ToolCalls  []toolCallDTO    `json:"tool_calls,omitempty"`
	ToolCallID *string          `json:"tool_call_id,omitempty"`
	ToolName   *string          `json:"tool_name,omitempty"`
	Payload    *json.RawMessage `json:"payload,omitempty"`
	IsError    *bool            `json:"is_error,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

type toolCallDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func marshalEvent(ev mesa.Event) (eventDTO, error) {
	switch m := ev.(type) {
	case mesa.UserMessage:
		return eventDTO{
			Type:      "user",
			Text:      &m.Text,
			Timestamp: m.Timestamp,
		}, nil
	case mesa.AssistantMessage:
		dto := eventDTO{
			Type:      "assistant",
			Text:      &m.Text,
			Timestamp: m.Timestamp,
		}
		for _, call := range m.ToolCalls {
			dto.ToolCalls = append(dto.ToolCalls, toolCallDTO{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		return dto, nil
	case mesa.ToolResultMessage:
		payload := m.Payload
		return eventDTO{
			Type:       "tool_result",
			ToolCallID: &m.ToolCallID,
			ToolName:   &m.ToolName,
			Payload:    &payload,
			IsError:    &m.IsError,
			Timestamp:  m.Timestamp,
		}, nil
	default:
		return eventDTO{}, fmt.Errorf("unknown event type: %T", ev)
	}
}

func unmarshalEvent(dto eventDTO) (mesa.Event, error) {
	switch dto.Type {
	case "user":
		var text string
		if dto.Text != nil {
			text = *dto.Text
		}
		return mesa.UserMessage{Text: text, Timestamp: dto.Timestamp}, nil
	case "assistant":
		var text string
		if dto.Text != nil {
			text = *dto.Text
		}
		msg := mesa.AssistantMessage{Text: text, Timestamp: dto.Timestamp}
		for _, call := range dto.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, mesa.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		return msg, nil
	case "tool_result":
		var callID, toolName string
		if dto.ToolCallID != nil {
			callID = *dto.ToolCallID
		}
		if dto.ToolName != nil {
			toolName = *dto.ToolName
		}
		var payload json.RawMessage
		if dto.Payload != nil {
			payload = *dto.Payload
		}
		var isError bool
		if dto.IsError != nil {
			isError = *dto.IsError
		}
		return mesa.ToolResultMessage{
			ToolCallID: callID,
			ToolName:   toolName,
			Payload:    payload,
			IsError:    isError,
			Timestamp:  dto.Timestamp,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", dto.Type)
	}
}

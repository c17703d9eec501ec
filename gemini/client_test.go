package gemini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/mesabot/mesa"
)

func TestConvertEvents(t *testing.T) {
	events := []mesa.Event{
		mesa.UserMessage{Text: "quiero reservar"},
		mesa.AssistantMessage{
			Text: "Un momento.",
			ToolCalls: []mesa.ToolCall{{
				ID:        "call-1",
				Name:      "create_reservation",
				Arguments: json.RawMessage(`{"party_size": 4}`),
			}},
		},
		mesa.ToolResultMessage{
			ToolCallID: "call-1",
			ToolName:   "create_reservation",
			Payload:    json.RawMessage(`{"success": true}`),
		},
	}

	contents := ConvertEvents(events)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "quiero reservar", contents[0].Parts[0].Text)

	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "Un momento.", contents[1].Parts[0].Text)
	fc := contents[1].Parts[1].FunctionCall
	require.NotNil(t, fc)
	assert.Equal(t, "call-1", fc.ID)
	assert.Equal(t, "create_reservation", fc.Name)
	assert.Equal(t, map[string]any{"party_size": float64(4)}, fc.Args)

	// Tool results travel back under the user role.
	assert.Equal(t, "user", contents[2].Role)
	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "call-1", fr.ID)
	assert.Equal(t, map[string]any{"success": true}, fr.Response)
}

func TestConvertEventsNonObjectPayload(t *testing.T) {
	contents := ConvertEvents([]mesa.Event{
		mesa.ToolResultMessage{ToolCallID: "call-1", Payload: json.RawMessage(`"plain text"`)},
	})
	require.Len(t, contents, 1)
	fr := contents[0].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, map[string]any{"output": `"plain text"`}, fr.Response)
}

func TestConvertTools(t *testing.T) {
	tools := []mesa.Tool{{
		Name:        "create_reservation",
		Description: "Create a reservation.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {"name": {"type": "string"}}}`),
	}}

	converted := ConvertTools(tools)
	require.Len(t, converted, 1)
	require.Len(t, converted[0].FunctionDeclarations, 1)

	decl := converted[0].FunctionDeclarations[0]
	assert.Equal(t, "create_reservation", decl.Name)
	schema, ok := decl.ParametersJsonSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])

	assert.Nil(t, ConvertTools(nil))
}

func TestBuildConfig(t *testing.T) {
	t.Run("defaults max tokens and omits system instruction", func(t *testing.T) {
		config := buildConfig(mesa.Request{})
		assert.Equal(t, int32(2048), config.MaxOutputTokens)
		assert.Nil(t, config.SystemInstruction)
		assert.Nil(t, config.Tools)
	})

	t.Run("carries prompt, tools and temperature", func(t *testing.T) {
		temp := 0.2
		config := buildConfig(mesa.Request{
			SystemPrompt: "You are the host of a restaurant.",
			Tools:        []mesa.Tool{{Name: "create_reservation", Parameters: json.RawMessage(`{}`)}},
			MaxTokens:    512,
			Temperature:  &temp,
		})
		assert.Equal(t, int32(512), config.MaxOutputTokens)
		require.NotNil(t, config.SystemInstruction)
		assert.Equal(t, "You are the host of a restaurant.", config.SystemInstruction.Parts[0].Text)
		require.Len(t, config.Tools, 1)
		require.NotNil(t, config.Temperature)
		assert.InDelta(t, 0.2, float64(*config.Temperature), 1e-6)
	})
}

func TestConvertResponse(t *testing.T) {
	t.Run("assembles text and tool calls", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "Voy a crear la reserva."},
						{FunctionCall: &genai.FunctionCall{
							ID:   "call-1",
							Name: "create_reservation",
							Args: map[string]any{"party_size": float64(4)},
						}},
					},
				},
			}},
		}

		msg := convertResponse(resp)
		assert.Equal(t, "Voy a crear la reserva.", msg.Text)
		require.Len(t, msg.ToolCalls, 1)
		assert.Equal(t, "call-1", msg.ToolCalls[0].ID)
		assert.JSONEq(t, `{"party_size": 4}`, string(msg.ToolCalls[0].Arguments))
	})

	t.Run("thought parts are not surfaced", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "internal reasoning", Thought: true},
						{Text: "¡Claro!"},
					},
				},
			}},
		}
		assert.Equal(t, "¡Claro!", convertResponse(resp).Text)
	})

	t.Run("missing call id gets generated", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{FunctionCall: &genai.FunctionCall{Name: "cancel_reservation"}},
					},
				},
			}},
		}
		msg := convertResponse(resp)
		require.Len(t, msg.ToolCalls, 1)
		assert.NotEmpty(t, msg.ToolCalls[0].ID)
	})

	t.Run("empty response yields empty message", func(t *testing.T) {
		msg := convertResponse(&genai.GenerateContentResponse{})
		assert.Empty(t, msg.Text)
		assert.Empty(t, msg.ToolCalls)
	})
}

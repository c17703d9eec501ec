// Package gemini implements mesa.Provider for the Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/mesabot/mesa"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 2048
)

// Interface compliance check.
var _ mesa.Provider = (*Client)(nil)

// Client implements [mesa.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Chat sends a blocking request to the Gemini API and returns the
// assembled assistant message. Retries are the SDK's own policy.
func (c *Client) Chat(ctx context.Context, req mesa.Request) (mesa.AssistantMessage, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	contents := ConvertEvents(req.Messages)
	config := buildConfig(req)

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return mesa.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	return convertResponse(resp), nil
}

func buildConfig(req mesa.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertEvents converts mesa Events to genai Contents.
// Exported for testing.
func ConvertEvents(events []mesa.Event) []*genai.Content {
	var result []*genai.Content
	for _, ev := range events {
		switch m := ev.(type) {
		case mesa.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Text}},
			})
		case mesa.AssistantMessage:
			var parts []*genai.Part
			if m.Text != "" {
				parts = append(parts, &genai.Part{Text: m.Text})
			}
			for _, call := range m.ToolCalls {
				// Arguments is always valid JSON coming from domain types.
				var args map[string]any
				_ = json.Unmarshal(call.Arguments, &args)
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: args,
					},
				})
			}
			result = append(result, &genai.Content{Role: "model", Parts: parts})
		case mesa.ToolResultMessage:
			var response map[string]any
			if err := json.Unmarshal(m.Payload, &response); err != nil {
				response = map[string]any{"output": string(m.Payload)}
			}
			result = append(result, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: response,
					},
				}},
			})
		}
	}
	return result
}

// ConvertTools converts mesa Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []mesa.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		// Parameters is always valid JSON coming from domain types.
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// convertResponse assembles one assistant message from the first
// candidate's parts. Function-call parts without an ID get a generated
// one so tool results can always be paired.
func convertResponse(resp *genai.GenerateContentResponse) mesa.AssistantMessage {
	msg := mesa.AssistantMessage{Timestamp: time.Now()}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return msg
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				args = json.RawMessage(`{}`)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			msg.ToolCalls = append(msg.ToolCalls, mesa.ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
		}
	}
	msg.Text = text.String()
	return msg
}

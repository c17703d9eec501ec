// Package agent orchestrates dialogue turns: it builds prompt context,
// calls the language model, executes requested tools, extracts reservation
// fields, and compacts history when it grows past the threshold.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesabot/mesa"
	"github.com/mesabot/mesa/tools"
)

// Controller runs one dialogue turn against an injected provider and tool
// executor. No process-wide state: construct one per wiring (or per test).
type Controller struct {
	provider mesa.Provider
	executor mesa.ToolExecutor
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source. Tests use it for deterministic
// timestamps and temporal context.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a Controller with the given provider and executor.
func NewController(provider mesa.Provider, executor mesa.ToolExecutor, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Turn processes one inbound guest message: it appends the message, loops
// through model calls and tool executions until the model stops requesting
// tools, runs field extraction on the user prefix, compacts history when
// needed, and returns the assistant's reply text.
//
// The turn never aborts on a backend or validation failure; those surface
// to the model as failure tool results. Only provider infrastructure
// errors propagate.
func (c *Controller) Turn(ctx context.Context, s *mesa.Session, text string) (string, error) {
	s.Messages = append(s.Messages, mesa.UserMessage{Text: text, Timestamp: c.now()})

	var reply string
	for {
		c.absorbBookingConfirmation(s)

		req := mesa.Request{
			SystemPrompt: personaPrompt(s, c.now()),
			Messages:     s.Messages,
			Tools:        tools.Definitions(),
		}
		msg, err := c.provider.Chat(ctx, req)
		if err != nil {
			return "", fmt.Errorf("model call: %w", err)
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = c.now()
		}
		s.Messages = append(s.Messages, msg)
		reply = msg.Text

		if !msg.HasToolCalls() {
			break
		}
		c.runTools(ctx, s, msg.ToolCalls)
	}

	if err := c.extractFields(ctx, s); err != nil {
		// Extraction is a side-channel read; a failure there must not
		// cost the guest their reply.
		c.logger.Warn().Err(err).Str("session", s.ID).Msg("field extraction failed")
	}

	if len(s.Messages) > compactionThreshold {
		if err := c.compact(ctx, s); err != nil {
			c.logger.Warn().Err(err).Str("session", s.ID).Msg("compaction failed, keeping full history")
		}
	}

	s.UpdatedAt = c.now()
	return reply, nil
}

// runTools executes every call the assistant requested and appends one
// ToolResultMessage per call, preserving order so pairing stays valid.
// Executor infrastructure errors become failure payloads.
func (c *Controller) runTools(ctx context.Context, s *mesa.Session, calls []mesa.ToolCall) {
	for _, call := range calls {
		result, err := c.executor.Execute(ctx, call.Name, call.Arguments)
		if err != nil {
			c.logger.Error().Err(err).Str("tool", call.Name).Msg("tool execution failed")
			payload, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
			result = &mesa.ToolResult{Payload: payload, IsError: true}
		}
		s.Messages = append(s.Messages, mesa.ToolResultMessage{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Payload:    result.Payload,
			IsError:    result.IsError,
			Timestamp:  c.now(),
		})
	}
}

// confirmationPayload is the slice of a create_reservation result the
// controller cares about.
type confirmationPayload struct {
	Success bool `json:"success"`
	Record  struct {
		ID string `json:"id"`
	} `json:"record"`
}

// absorbBookingConfirmation inspects the most recent event and, when it is
// a successful create_reservation result, copies the store-assigned ID
// into the session and marks it booked. Malformed payloads are logged and
// skipped; booking fields keep their prior values.
func (c *Controller) absorbBookingConfirmation(s *mesa.Session) {
	if len(s.Messages) == 0 {
		return
	}
	tr, ok := s.Messages[len(s.Messages)-1].(mesa.ToolResultMessage)
	if !ok || tr.ToolName != tools.CreateReservationTool {
		return
	}

	var payload confirmationPayload
	if err := json.Unmarshal(tr.Payload, &payload); err != nil {
		c.logger.Warn().Err(err).Str("session", s.ID).Msg("skipping unparseable tool payload")
		return
	}
	if !payload.Success || payload.Record.ID == "" {
		return
	}

	s.ReservationID = payload.Record.ID
	s.Booked = true
	c.logger.Info().Str("session", s.ID).Str("reservation_id", s.ReservationID).Msg("reservation confirmed")
}

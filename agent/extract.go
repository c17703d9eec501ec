package agent

import (
	"context"
	"fmt"

	"github.com/mesabot/mesa"
	"github.com/mesabot/mesa/tools"
)

// extractFields runs the field extraction pass: a second, independent
// model invocation over the conversation prefix ending at the most recent
// guest message. Assistant chatter and tool noise from the current turn's
// handling are excluded so they cannot bias extraction. The pass never
// appends to the visible history; its only effect is merging newly
// mentioned values into s.Fields.
func (c *Controller) extractFields(ctx context.Context, s *mesa.Session) error {
	req := mesa.Request{
		SystemPrompt: extractionPrompt(s.Fields, c.now()),
		Messages:     extractionPrefix(s.Messages),
		Tools:        []mesa.Tool{tools.RememberTool()},
	}
	msg, err := c.provider.Chat(ctx, req)
	if err != nil {
		return fmt.Errorf("extraction call: %w", err)
	}

	// No tool call means the model found nothing new; fields stay as-is.
	if !msg.HasToolCalls() {
		return nil
	}

	result, err := tools.ExecuteRememberFields(msg.ToolCalls[0].Arguments)
	if err != nil {
		return err
	}
	if result.IsError {
		return fmt.Errorf("remember_fields rejected arguments: %w", mesa.ErrToolPayload)
	}
	patch, err := tools.ParseRememberedFields(result.Payload)
	if err != nil {
		return err
	}

	s.Fields.Merge(patch)
	c.logger.Debug().Str("session", s.ID).Msg("reservation fields merged")
	return nil
}

// extractionPrefix returns the events up to and including the most recent
// UserMessage. With no UserMessage present the full history is used.
func extractionPrefix(events []mesa.Event) []mesa.Event {
	if i := mesa.LastUserIndex(events); i >= 0 {
		return events[:i+1]
	}
	return events
}

package agent

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesabot/mesa"
)

// compactionThreshold is the message count above which a turn ends with
// compaction. It bounds prompt growth while keeping enough tail context.
const compactionThreshold = 18

// retentionWindow caps how many events after the last guest message are
// retained. Tool-pair repair may extend past it, bounded by the calls in a
// single assistant message.
const retentionWindow = 4

// PlanRetention selects the events that survive compaction. It is a pure
// function so the pruning algorithm can be tested independently of any
// model or store.
//
// The retained window starts at the most recent UserMessage and spans at
// most retentionWindow events. If the window holds an AssistantMessage
// with tool calls, its paired results are pulled in even past the cap;
// with no paired results anywhere after it, the dangling assistant
// message is dropped so an unpaired tool call never survives. The window
// head is then trimmed to the first UserMessage, guaranteeing retained
// history opens with a guest turn.
//
// With no UserMessage anywhere there is no valid truncation point and the
// full history is retained.
func PlanRetention(events []mesa.Event) []mesa.Event {
	anchor := mesa.LastUserIndex(events)
	if anchor < 0 {
		return slices.Clone(events)
	}

	end := min(anchor+retentionWindow, len(events))
	window := slices.Clone(events[anchor:end])

	// Locate the last assistant message with tool calls inside the window.
	callIdx := -1
	for i, ev := range window {
		if am, ok := ev.(mesa.AssistantMessage); ok && am.HasToolCalls() {
			callIdx = i
		}
	}

	if callIdx >= 0 {
		am := window[callIdx].(mesa.AssistantMessage)
		global := anchor + callIdx
		paired := pairedResults(events, global, len(am.ToolCalls))
		if paired == nil {
			// Dangling call: drop the assistant message entirely.
			window = append(window[:callIdx], window[callIdx+1:]...)
		} else {
			// Splice the full result set in right after the call, past the
			// cap if necessary. Results already inside the window are
			// replaced in place so nothing after them is lost.
			inside := min(len(am.ToolCalls), len(window)-(callIdx+1))
			rest := slices.Clone(window[callIdx+1+inside:])
			window = append(window[:callIdx+1], paired...)
			window = append(window, rest...)
		}
	}

	// Retained history must open with a guest turn.
	for i, ev := range window {
		if _, ok := ev.(mesa.UserMessage); ok {
			return window[i:]
		}
	}
	return window
}

// pairedResults returns the n tool results immediately following the
// assistant message at index i, or nil if any is missing.
func pairedResults(events []mesa.Event, i, n int) []mesa.Event {
	if i+n >= len(events) {
		return nil
	}
	results := make([]mesa.Event, 0, n)
	for k := i + 1; k <= i+n; k++ {
		tr, ok := events[k].(mesa.ToolResultMessage)
		if !ok {
			return nil
		}
		results = append(results, tr)
	}
	return results
}

// compact asks the model to produce or extend the rolling summary over
// the full current history, then applies the retention plan. Summary and
// pruning apply together: a summarization failure leaves the session
// untouched.
func (c *Controller) compact(ctx context.Context, s *mesa.Session) error {
	msgs := append(slices.Clone(s.Messages), mesa.UserMessage{Text: summaryPrompt(s.Summary), Timestamp: c.now()})
	msg, err := c.provider.Chat(ctx, mesa.Request{Messages: msgs})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	retained := PlanRetention(s.Messages)
	if err := mesa.ValidateHistory(retained); err != nil {
		return fmt.Errorf("retention plan: %w", err)
	}
	c.logger.Debug().
		Str("session", s.ID).
		Int("before", len(s.Messages)).
		Int("after", len(retained)).
		Msg("history compacted")

	s.Summary = msg.Text
	s.Messages = retained
	return nil
}

package mesa

import "fmt"

// ValidateHistory checks the structural invariants retained history must
// satisfy after compaction: it is either empty or begins with a
// UserMessage, and every AssistantMessage carrying tool calls is
// immediately followed by one ToolResultMessage per requested call,
// before any further UserMessage.
func ValidateHistory(events []Event) error {
	if len(events) == 0 {
		return nil
	}
	if _, ok := events[0].(UserMessage); !ok {
		return fmt.Errorf("history starts with %s event: %w", events[0].Role(), ErrValidation)
	}
	return ValidateToolPairing(events)
}

// ValidateToolPairing checks only the tool-call pairing invariant, which
// must hold for any message sequence sent to a provider.
func ValidateToolPairing(events []Event) error {
	for i, ev := range events {
		am, ok := ev.(AssistantMessage)
		if !ok || !am.HasToolCalls() {
			continue
		}
		for j, call := range am.ToolCalls {
			k := i + 1 + j
			if k >= len(events) {
				return fmt.Errorf("tool call %q has no result: %w", call.ID, ErrValidation)
			}
			tr, ok := events[k].(ToolResultMessage)
			if !ok {
				return fmt.Errorf("tool call %q followed by %s event instead of its result: %w",
					call.ID, events[k].Role(), ErrValidation)
			}
			if tr.ToolCallID != call.ID {
				return fmt.Errorf("tool call %q paired with result for %q: %w",
					call.ID, tr.ToolCallID, ErrValidation)
			}
		}
	}
	return nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesabot/mesa"
)

// Compile-time interface check.
var _ mesa.ToolExecutor = (*Executor)(nil)

// Executor dispatches tool calls against the reservation store. The store
// dependency is injected at construction time so each session (or test)
// can carry its own backend.
type Executor struct {
	store  mesa.ReservationStore
	loc    *time.Location
	logger zerolog.Logger
}

// NewExecutor creates an Executor. loc is the restaurant's timezone, used
// to turn a guest's date+time into an absolute instant. A nil loc means UTC.
func NewExecutor(store mesa.ReservationStore, loc *time.Location, logger zerolog.Logger) *Executor {
	if loc == nil {
		loc = time.UTC
	}
	return &Executor{store: store, loc: loc, logger: logger}
}

// Execute dispatches a tool call by name. Unknown tool names return a
// failure payload so the model can self-correct.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) (*mesa.ToolResult, error) {
	e.logger.Debug().Str("tool", name).RawJSON("args", normalizeArgs(args)).Msg("executing tool")
	switch name {
	case CreateReservationTool:
		return e.executeCreate(ctx, args)
	case UpdateReservationTool:
		return e.executeUpdate(ctx, args)
	case CancelReservationTool:
		return e.executeCancel(ctx, args)
	case RememberFieldsTool:
		return ExecuteRememberFields(args)
	default:
		return failureResult(fmt.Errorf("unknown tool %q: %w", name, mesa.ErrToolNotFound)), nil
	}
}

// Definitions returns the three reservation tools bound during a dialogue
// turn. The remember_fields tool is bound separately by the extraction node.
func Definitions() []mesa.Tool {
	return []mesa.Tool{
		CreateTool(),
		UpdateTool(),
		CancelTool(),
	}
}

// normalizeArgs returns args if it is valid JSON, or a JSON string of the
// raw bytes otherwise, so logging never emits invalid JSON.
func normalizeArgs(args json.RawMessage) json.RawMessage {
	if json.Valid(args) && len(args) > 0 {
		return args
	}
	quoted, _ := json.Marshal(string(args))
	return quoted
}

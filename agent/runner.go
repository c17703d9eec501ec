package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesabot/mesa"
)

// Runner hosts the turn controller behind a session store. It creates
// sessions lazily on first message, serializes turns per conversation
// identifier, and persists the session atomically at the end of each turn.
// Distinct conversations proceed in parallel.
type Runner struct {
	sessions   mesa.SessionStore
	controller *Controller
	logger     zerolog.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner creates a Runner around the given session store and controller.
func NewRunner(sessions mesa.SessionStore, controller *Controller, logger zerolog.Logger) *Runner {
	return &Runner{
		sessions:   sessions,
		controller: controller,
		logger:     logger,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Message processes one inbound guest message for the given conversation
// identifier and returns the assistant's reply. restaurantContext is only
// applied when the session is first created; it is read-only afterwards.
func (r *Runner) Message(ctx context.Context, conversationID, restaurantContext, text string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("conversation id is required: %w", mesa.ErrValidation)
	}

	lock := r.sessionLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	s, err := r.sessions.Get(ctx, conversationID)
	switch {
	case errors.Is(err, mesa.ErrSessionNotFound):
		s = &mesa.Session{
			ID:                conversationID,
			RestaurantContext: restaurantContext,
			CreatedAt:         r.now(),
		}
		r.logger.Info().Str("session", conversationID).Msg("session created")
	case err != nil:
		return "", fmt.Errorf("load session: %w", err)
	}

	reply, err := r.controller.Turn(ctx, s, text)
	if err != nil {
		return "", err
	}

	if err := r.sessions.Put(ctx, s); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	return reply, nil
}

// Session returns the persisted session for a conversation identifier.
func (r *Runner) Session(ctx context.Context, conversationID string) (*mesa.Session, error) {
	return r.sessions.Get(ctx, conversationID)
}

// sessionLock returns the mutex serializing turns for one conversation.
func (r *Runner) sessionLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
